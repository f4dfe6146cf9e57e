// Command checkers starts the Checkers Game Server.
//
// It supports two modes:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is reachable
//
// Settings come from CHECKERS_* environment variables (and an optional .env
// file); flags override them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/checkers-game/api"
	"github.com/wricardo/checkers-game/game/config"
	"github.com/wricardo/checkers-game/game/service"
	"github.com/wricardo/checkers-game/game/stats"
	"github.com/wricardo/checkers-game/game/store"
	"github.com/wricardo/checkers-game/logging"
	"github.com/wricardo/checkers-game/settings"
	"github.com/wricardo/checkers-game/transport/mcp"
	"github.com/wricardo/checkers-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Checkers Game Server"
)

const (
	cleanupInterval = time.Hour
	syncInterval    = 5 * time.Second
	shutdownTimeout = 10 * time.Second
	probeTimeout    = 2 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "checkers",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "setups-dir", Usage: "directory containing starting positions"},
			&cli.StringFlag{Name: "games-dir", Usage: "directory for saved games (file store)"},
			&cli.StringFlag{Name: "store", Usage: "game store backend: file, mongo or memory"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-file", Usage: "also write logs to this rotated file"},
			&cli.BoolFlag{Name: "debug", Usage: "shorthand for --log-level debug"},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel"},
					&cli.StringFlag{
						Name:    "ngrok-auth",
						Usage:   "ngrok auth token",
						Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
					},
					&cli.StringFlag{
						Name:    "ngrok-domain",
						Usage:   "custom ngrok domain",
						Sources: cli.EnvVars("NGROK_DOMAIN"),
					},
				},
				Action: serve,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, reusing a running API server or starting an internal one",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "api-url",
						Usage: "API server to reuse when reachable",
						Value: "http://localhost:8080",
					},
				},
				Action: runStdioMCP,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// loadSettings reads the environment and applies any flags that were set
func loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	cfg, err := settings.Load()
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("setups-dir") {
		cfg.SetupsDir = cmd.String("setups-dir")
	}
	if cmd.IsSet("games-dir") {
		cfg.GamesDir = cmd.String("games-dir")
	}
	if cmd.IsSet("store") {
		cfg.Store = cmd.String("store")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-file") {
		cfg.Log.File = cmd.String("log-file")
	}
	if cmd.Bool("debug") {
		cfg.Log.Level = "debug"
	}
	if cmd.Bool("ngrok") {
		cfg.Ngrok.Enabled = true
	}
	if v := cmd.String("ngrok-auth"); v != "" {
		cfg.Ngrok.AuthToken = v
	}
	if v := cmd.String("ngrok-domain"); v != "" {
		cfg.Ngrok.Domain = v
	}

	return cfg, cfg.Validate()
}

// services bundles everything a running mode needs
type services struct {
	game        service.GameService
	games       *store.Manager
	persistence store.Persistence
	closers     []func(context.Context) error
}

func (s *services) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// initializeServices wires the game store, setups, statistics and the game service
func initializeServices(ctx context.Context, cfg *settings.Settings, logger *zap.Logger) (*services, error) {
	svcs := &services{}

	setups, err := config.NewManager(cfg.SetupsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create setup manager: %w", err)
	}

	switch cfg.Store {
	case settings.StoreFile:
		fp, err := store.NewFilePersistence(cfg.GamesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create file persistence: %w", err)
		}
		svcs.persistence = fp
	case settings.StoreMongo:
		mp, err := store.NewMongoPersistence(ctx, store.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
		if err != nil {
			return nil, err
		}
		svcs.persistence = mp
		svcs.closers = append(svcs.closers, mp.Close)
	}

	if svcs.persistence != nil {
		svcs.games = store.NewManagerWithPersistence(svcs.persistence, logger.Named("store"))
		if err := svcs.games.LoadPersisted(ctx); err != nil {
			logger.Warn("failed to load persisted games", zap.Error(err))
		}
	} else {
		svcs.games = store.NewManager(logger.Named("store"))
	}

	var statsStore stats.Store = stats.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rs, err := stats.NewRedisStore(ctx, stats.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = svcs.Close(ctx)
			return nil, err
		}
		statsStore = rs
		svcs.closers = append(svcs.closers, func(context.Context) error { return rs.Close() })
	}

	svcs.game = service.NewGameService(svcs.games, setups, statsStore, logger.Named("service"))

	logger.Info("services initialized",
		zap.String("store", cfg.Store),
		zap.Bool("redis_stats", cfg.Redis.Addr != ""),
		zap.Int("games_loaded", svcs.games.Count()),
		zap.String("setups_dir", cfg.SetupsDir),
	)
	return svcs, nil
}

// setup builds settings, logger and services shared by both modes
func setup(ctx context.Context, cmd *cli.Command) (*settings.Settings, *zap.Logger, *services, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File, JSON: cfg.Log.JSON})
	if err != nil {
		return nil, nil, nil, err
	}
	svcs, err := initializeServices(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return cfg, logger, svcs, nil
}

// serve runs the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// When ngrok is enabled it also serves through a public tunnel.
func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, svcs, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting", zap.String("app", AppName), zap.String("version", Version), zap.String("mode", "serve"))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	startBackground(ctx, &wg, svcs, cfg, logger)

	hub := websocket.NewHub(logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	addr := cfg.Addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr), Version)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(svcs.game, hub, logger.Named("api")))
	mainRouter.Handle("/mcp", mcpHandler(mcpClient.GetMCPServer(), logger))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?game=<game_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cfg, mainRouter, logger.Named("ngrok"))
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		runErr = fmt.Errorf("HTTP server failed: %w", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	wg.Wait()
	if err := svcs.Close(shutdownCtx); err != nil {
		logger.Error("failed to close services", zap.Error(err))
	}

	logger.Info("server stopped")
	return runErr
}

// mcpHandler answers MCP JSON-RPC messages posted over plain HTTP
func mcpHandler(mcpServer *server.MCPServer, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			logger.Error("failed to marshal mcp response", zap.Error(err))
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(responseData)
	})
}

func runNgrok(ctx context.Context, cfg *settings.Settings, handler http.Handler, logger *zap.Logger) {
	if cfg.Ngrok.AuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if cfg.Ngrok.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Ngrok.Domain))
		logger.Info("using custom ngrok domain", zap.String("domain", cfg.Ngrok.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.Ngrok.AuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	url := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", url),
		zap.String("api", url+"/api"),
		zap.String("mcp", url+"/mcp"),
	)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// startBackground launches expiry cleanup and, for the file store, the
// routine that forgets games whose files were removed.
func startBackground(ctx context.Context, wg *sync.WaitGroup, svcs *services, cfg *settings.Settings, logger *zap.Logger) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		cleanupRoutine(ctx, svcs.games, cfg.Retention, cleanupInterval, logger)
	}()

	if cfg.Store == settings.StoreFile && svcs.persistence != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			syncRoutine(ctx, svcs.games, svcs.persistence, syncInterval, logger)
		}()
	}
}

// cleanupRoutine periodically removes games not accessed within retention
func cleanupRoutine(ctx context.Context, games *store.Manager, retention, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := games.CleanupExpired(retention); removed > 0 {
				logger.Info("cleaned up expired games", zap.Int("removed", removed))
			}
		}
	}
}

// syncRoutine drops games from memory once their persisted copy is gone
func syncRoutine(ctx context.Context, games *store.Manager, persistence store.Persistence, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphans(ctx, games, persistence, logger); pruned > 0 {
				logger.Info("pruned orphaned games from memory", zap.Int("pruned", pruned))
			}
		}
	}
}

func pruneOrphans(ctx context.Context, games *store.Manager, persistence store.Persistence, logger *zap.Logger) int {
	pruned := 0
	for _, g := range games.List() {
		exists, err := persistence.Exists(ctx, g.ID)
		if err != nil || exists {
			continue
		}
		if err := games.DeleteFromMemory(g.ID); err == nil {
			pruned++
			logger.Debug("pruned game (file deleted)", zap.String("game_id", g.ID))
		}
	}
	return pruned
}

// runStdioMCP runs an MCP stdio server.
// It reuses the API at --api-url when it answers /health; otherwise it
// starts an internal HTTP API bound to a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, svcs, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer svcs.Close(context.Background())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	externalURL := cmd.String("api-url")
	baseURL := externalURL
	logger.Info("checking for external API server", zap.String("url", externalURL))

	if !apiReachable(ctx, externalURL) {
		logger.Info("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		var wg sync.WaitGroup
		startBackground(ctx, &wg, svcs, cfg, logger)

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svcs.game, hub, logger.Named("api"))}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer func() {
			cancel()
			_ = httpServer.Close()
			wg.Wait()
		}()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		logger.Info("internal HTTP server started", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL, Version)
	logger.Info("MCP stdio server ready", zap.String("api", baseURL))

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiReachable reports whether a checkers API answers at baseURL
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
