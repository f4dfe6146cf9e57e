// Command autoplay plays complete checkers games against a running server
// through the REST API. One bot takes the red seat, a second joins as black,
// and both pick moves with a one-ply greedy strategy until the game ends or
// the move limit is hit. It is handy for smoke testing a deployment and for
// filling the statistics store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/checkers-game/game/engine"
	"github.com/wricardo/checkers-game/logging"
)

// ErrMoveLimit is returned when a game is still running after the move limit
var ErrMoveLimit = errors.New("move limit reached")

// Player ids used by the two bots
const (
	RedBot   = "bot-red"
	BlackBot = "bot-black"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play bot-vs-bot checkers games through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "setup", Usage: "starting position (default classic)"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "number of games to play"},
			&cli.IntFlag{Name: "max-moves", Value: 500, Usage: "maximum moves per game"},
			&cli.IntFlag{Name: "seed", Usage: "random seed for tie breaks (default: time based)"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between moves"},
			&cli.BoolFlag{Name: "v", Usage: "log every move"},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "autoplay: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := "info"
	if cmd.Bool("v") {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level})
	if err != nil {
		return err
	}
	defer logger.Sync()

	seed := int64(cmd.Int("seed"))
	if !cmd.IsSet("seed") {
		seed = time.Now().UnixNano()
	}

	player := &Player{
		Client:   NewClient(cmd.String("url")),
		Strategy: NewGreedyStrategy(seed),
		MaxMoves: int(cmd.Int("max-moves")),
		Delay:    cmd.Duration("delay"),
		Logger:   logger,
	}
	logger.Info("connecting to game server", zap.String("url", cmd.String("url")), zap.Int64("seed", seed))

	games := int(cmd.Int("games"))
	for i := 1; i <= games; i++ {
		summary, err := player.PlayGame(ctx, cmd.String("setup"))
		if err != nil && !errors.Is(err, ErrMoveLimit) {
			return fmt.Errorf("game %d: %w", i, err)
		}
		logger.Info("game over",
			zap.Int("game", i),
			zap.String("game_id", summary.GameID),
			zap.Int("moves", summary.Moves),
			zap.String("winner", string(summary.Winner)),
			zap.Bool("move_limit", errors.Is(err, ErrMoveLimit)),
		)
	}

	for _, id := range []string{RedBot, BlackBot} {
		s, err := player.Client.Stats(ctx, id)
		if err != nil {
			logger.Warn("failed to fetch stats", zap.String("player_id", id), zap.Error(err))
			continue
		}
		logger.Info("stats", zap.String("player_id", id), zap.Int64("wins", s.Wins), zap.Int64("losses", s.Losses))
	}
	return nil
}

// Summary describes one finished (or abandoned) game
type Summary struct {
	GameID string
	Moves  int
	Winner engine.Color
}

// Player drives both seats of a game
type Player struct {
	Client   *Client
	Strategy *GreedyStrategy
	MaxMoves int
	Delay    time.Duration
	Logger   *zap.Logger
}

// PlayGame creates a game, seats both bots and plays until the game ends.
// ErrMoveLimit is returned with a valid summary when MaxMoves is reached.
func (p *Player) PlayGame(ctx context.Context, setupID string) (Summary, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	game, err := p.Client.CreateGame(ctx, RedBot, setupID)
	if err != nil {
		return Summary{}, err
	}
	if game, err = p.Client.JoinGame(ctx, game.ID, BlackBot); err != nil {
		return Summary{}, err
	}
	logger.Info("game created", zap.String("game_id", game.ID), zap.String("setup", game.SetupID))

	summary := Summary{GameID: game.ID}
	state := game.State
	for !state.Finished() {
		if summary.Moves >= p.MaxMoves {
			return summary, ErrMoveLimit
		}

		m, ok := p.Strategy.NextMove(state)
		if !ok {
			return summary, fmt.Errorf("%s has no legal move in a running game", state.CurrentPlayer)
		}

		playerID := RedBot
		if state.CurrentPlayer == engine.Black {
			playerID = BlackBot
		}

		result, err := p.Client.Move(ctx, game.ID, playerID, m)
		if err != nil {
			return summary, err
		}
		summary.Moves++
		logger.Debug("move",
			zap.String("player", string(result.Player)),
			zap.Int("from_row", m.From.Row), zap.Int("from_col", m.From.Col),
			zap.Int("to_row", m.To.Row), zap.Int("to_col", m.To.Col),
			zap.Bool("captured", result.Captured != nil),
			zap.Bool("promoted", result.Promoted),
		)
		state = result.Game.State

		if p.Delay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(p.Delay):
			}
		}
	}

	summary.Winner = state.Winner
	return summary, nil
}
