package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/wricardo/checkers-game/game/config"
	"github.com/wricardo/checkers-game/game/engine"
	"github.com/wricardo/checkers-game/game/stats"
	"github.com/wricardo/checkers-game/game/store"
	"github.com/wricardo/checkers-game/logging"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	games    GameStore
	setups   SetupManager
	stats    stats.Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewGameService creates a new game service instance
func NewGameService(games GameStore, setups SetupManager, statsStore stats.Store, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if statsStore == nil {
		statsStore = stats.NewMemoryStore()
	}

	v := validator.New()
	// Report json field names so errors match what clients sent
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &gameServiceImpl{
		games:    games,
		setups:   setups,
		stats:    statsStore,
		validate: v,
		logger:   logger,
	}
}

// CreateGame starts a game from the requested setup with the caller on red
func (s *gameServiceImpl) CreateGame(ctx context.Context, req CreateGameRequest) (*GameInfo, error) {
	setupID := req.SetupID
	var setup *config.Setup
	var err error
	if setupID != "" {
		setup, err = s.setups.LoadSetup(setupID)
		if err != nil {
			if errors.Is(err, config.ErrSetupNotFound) {
				available, listErr := s.setups.ListSetups()
				if listErr == nil && len(available) > 0 {
					ids := lo.Map(available, func(info *config.SetupInfo, _ int) string { return info.SetupID })
					return nil, fmt.Errorf("setup '%s' not found, available setups: %v: %w", setupID, ids, err)
				}
			}
			return nil, fmt.Errorf("failed to load setup %s: %w", setupID, err)
		}
	} else {
		setup = s.setups.GetDefault()
		setupID = config.DefaultSetupID
	}

	state, err := setup.NewGame()
	if err != nil {
		return nil, fmt.Errorf("failed to start game from setup %s: %w", setupID, err)
	}

	playerID := req.PlayerID
	if playerID == "" {
		playerID = store.Anonymous
	}

	game, err := s.games.Create(ctx, &store.Game{
		SetupID: setupID,
		State:   state,
		Players: store.Players{Red: playerID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	s.logger.Info("game created",
		zap.String("game_id", game.ID),
		zap.String("setup_id", setupID),
		zap.String("red_player", playerID))

	return newGameInfo(game), nil
}

// JoinGame seats playerID on black
func (s *gameServiceImpl) JoinGame(ctx context.Context, gameID, playerID string) (*GameInfo, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: player_id is required", ErrMalformedRequest)
	}

	game, err := s.games.Update(ctx, gameID, func(g *store.Game) error {
		if g.Players.Black == playerID {
			return nil
		}
		if g.Players.Black != "" {
			return ErrSeatTaken
		}
		if g.State.Finished() {
			return engine.ErrGameFinished
		}
		g.Players.Black = playerID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player joined", zap.String("game_id", gameID), zap.String("black_player", playerID))
	return newGameInfo(game), nil
}

// GetGame retrieves game information
func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (*GameInfo, error) {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return newGameInfo(game), nil
}

// ListGames returns cached games filtered and ordered by opts
func (s *gameServiceImpl) ListGames(ctx context.Context, opts ListOptions) ([]*GameInfo, error) {
	games := s.games.List()
	if opts.Status != "" {
		games = lo.Filter(games, func(g *store.Game, _ int) bool { return g.State.Status == opts.Status })
	}

	sortBy := opts.Sort
	if sortBy == "" {
		sortBy = "accessed"
	}
	sort.Slice(games, func(i, j int) bool {
		var ti, tj time.Time
		switch sortBy {
		case "created":
			ti, tj = games[i].CreatedAt, games[j].CreatedAt
		case "updated":
			ti, tj = games[i].UpdatedAt, games[j].UpdatedAt
		default:
			ti, tj = games[i].LastAccessedAt, games[j].LastAccessedAt
		}
		if opts.Order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if opts.Limit > 0 && opts.Limit < len(games) {
		games = games[:opts.Limit]
	}

	return lo.Map(games, func(g *store.Game, _ int) *GameInfo { return newGameInfo(g) }), nil
}

// DeleteGame removes a game
func (s *gameServiceImpl) DeleteGame(ctx context.Context, gameID string) error {
	return s.games.Delete(ctx, gameID)
}

// SubmitMove validates the request, runs it through the engine and stores
// the result. Rejected moves leave the game untouched.
func (s *gameServiceImpl) SubmitMove(ctx context.Context, gameID string, req MoveRequest) (*MoveResult, error) {
	start := time.Now()
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	m := req.Move()

	var outcome engine.Outcome
	var player engine.Color
	game, err := s.games.Update(ctx, gameID, func(g *store.Game) error {
		var err error
		player, err = resolvePlayer(g, req)
		if err != nil {
			return err
		}

		outcome, err = engine.SubmitMove(g.State, m, player)
		if err != nil {
			return err
		}

		g.State = outcome.State
		g.History = append(g.History, store.MoveRecord{
			Seq:          len(g.History) + 1,
			Player:       player,
			PlayerID:     g.Players.For(player),
			Move:         m,
			Captured:     outcome.Captured,
			Promoted:     outcome.Promoted,
			MustContinue: outcome.MustContinue,
			Timestamp:    time.Now(),
		})
		return nil
	})
	if err != nil {
		var moveErr *engine.MoveError
		if errors.As(err, &moveErr) {
			s.logger.Debug("move rejected",
				zap.String("game_id", gameID),
				zap.String("player", string(moveErr.Player)),
				zap.String("reason", string(moveErr.Reason)),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("move applied",
		zap.String("game_id", gameID),
		zap.String("player", string(player)),
		zap.Int("from_row", m.From.Row), zap.Int("from_col", m.From.Col),
		zap.Int("to_row", m.To.Row), zap.Int("to_col", m.To.Col),
		zap.Bool("captured", outcome.Captured != nil),
		zap.Bool("promoted", outcome.Promoted),
		zap.String("next", string(game.State.CurrentPlayer)),
		logging.Since(start))

	if game.State.Finished() {
		s.recordResult(ctx, game)
	}

	return &MoveResult{
		Game:         newGameInfo(game),
		Move:         m,
		Player:       player,
		Captured:     outcome.Captured,
		Promoted:     outcome.Promoted,
		MustContinue: outcome.MustContinue,
		Events:       moveEvents(player, m, outcome),
	}, nil
}

// LegalMoves lists the moves available to the side to move
func (s *gameServiceImpl) LegalMoves(ctx context.Context, gameID string) (*LegalMovesResponse, error) {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	moves := engine.LegalMovesFor(game.State)
	if moves == nil {
		moves = []engine.Move{}
	}
	return &LegalMovesResponse{
		GameID:        game.ID,
		CurrentPlayer: game.State.CurrentPlayer,
		ChainFrom:     game.State.ChainFrom,
		Moves:         moves,
	}, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, gameID string, opts HistoryOptions) (*HistoryResponse, error) {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	history := game.History
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []store.MoveRecord{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetStats returns win and loss counts for a player
func (s *gameServiceImpl) GetStats(ctx context.Context, playerID string) (*stats.PlayerStats, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: player_id is required", ErrMalformedRequest)
	}
	return s.stats.Get(ctx, playerID)
}

// ListSetups returns available starting positions
func (s *gameServiceImpl) ListSetups(ctx context.Context) ([]*config.SetupInfo, error) {
	return s.setups.ListSetups()
}

// LoadSetup loads a specific starting position
func (s *gameServiceImpl) LoadSetup(ctx context.Context, setupID string) (*config.Setup, error) {
	return s.setups.LoadSetup(setupID)
}

func (s *gameServiceImpl) validateRequest(req MoveRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
			if fe.Tag() == "required" {
				return fe.Field() + " is required"
			}
			return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		})
		return fmt.Errorf("%w: %s", ErrMalformedRequest, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrMalformedRequest, err)
}

// recordResult updates both players' statistics. Failures are logged and
// do not affect the move that finished the game.
func (s *gameServiceImpl) recordResult(ctx context.Context, game *store.Game) {
	winner := game.State.Winner
	for _, c := range []engine.Color{engine.Red, engine.Black} {
		playerID := game.Players.For(c)
		if err := s.stats.Record(ctx, playerID, c == winner); err != nil {
			s.logger.Warn("failed to record stats",
				zap.String("game_id", game.ID), zap.String("player_id", playerID), zap.Error(err))
		}
	}
	s.logger.Info("game finished", zap.String("game_id", game.ID), zap.String("winner", string(winner)))
}

// resolvePlayer decides which color a request plays for. Without an explicit
// color the side to move is assumed, which supports hot-seat play.
func resolvePlayer(g *store.Game, req MoveRequest) (engine.Color, error) {
	player := req.Player
	if player == "" && req.PlayerID != "" {
		switch req.PlayerID {
		case g.Players.Red:
			player = engine.Red
		case g.Players.Black:
			player = engine.Black
		}
	}
	if player == "" {
		player = g.State.CurrentPlayer
	}

	if req.PlayerID != "" {
		seated := g.Players.For(player)
		if seated != "" && seated != store.Anonymous && seated != req.PlayerID {
			return "", ErrWrongPlayer
		}
	}
	return player, nil
}

func moveEvents(player engine.Color, m engine.Move, out engine.Outcome) []GameEvent {
	now := time.Now()
	to := m.To
	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("%s moved (%d,%d) to (%d,%d)", player, m.From.Row, m.From.Col, m.To.Row, m.To.Col),
		Timestamp: now,
		Position:  &to,
	}}

	if out.Captured != nil {
		events = append(events, GameEvent{
			Type:      EventCapture,
			Message:   fmt.Sprintf("%s captured the piece on (%d,%d)", player, out.Captured.Row, out.Captured.Col),
			Timestamp: now,
			Position:  out.Captured,
		})
	}
	if out.Promoted {
		events = append(events, GameEvent{
			Type:      EventPromotion,
			Message:   fmt.Sprintf("%s piece crowned on (%d,%d)", player, to.Row, to.Col),
			Timestamp: now,
			Position:  &to,
		})
	}
	if out.MustContinue {
		events = append(events, GameEvent{
			Type:      EventChain,
			Message:   fmt.Sprintf("%s must continue jumping from (%d,%d)", player, to.Row, to.Col),
			Timestamp: now,
			Position:  &to,
		})
	}
	if out.State.Finished() {
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   fmt.Sprintf("Game over, %s wins", out.State.Winner),
			Timestamp: now,
		})
	}
	return events
}

func newGameInfo(g *store.Game) *GameInfo {
	return &GameInfo{
		ID:             g.ID,
		SetupID:        g.SetupID,
		State:          g.State,
		Players:        g.Players,
		MoveCount:      g.State.MoveCount,
		RedPieces:      g.State.Board.Count(engine.Red),
		BlackPieces:    g.State.Board.Count(engine.Black),
		Version:        g.Version,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
		LastAccessedAt: g.LastAccessedAt,
	}
}
