package service

import (
	"context"

	"github.com/wricardo/checkers-game/game/config"
	"github.com/wricardo/checkers-game/game/stats"
	"github.com/wricardo/checkers-game/game/store"
)

// GameService defines all game-related operations
type GameService interface {
	// Game lifecycle
	CreateGame(ctx context.Context, req CreateGameRequest) (*GameInfo, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*GameInfo, error)
	GetGame(ctx context.Context, gameID string) (*GameInfo, error)
	ListGames(ctx context.Context, opts ListOptions) ([]*GameInfo, error)
	DeleteGame(ctx context.Context, gameID string) error

	// Play
	SubmitMove(ctx context.Context, gameID string, req MoveRequest) (*MoveResult, error)
	LegalMoves(ctx context.Context, gameID string) (*LegalMovesResponse, error)
	GetMoveHistory(ctx context.Context, gameID string, opts HistoryOptions) (*HistoryResponse, error)

	// Players
	GetStats(ctx context.Context, playerID string) (*stats.PlayerStats, error)

	// Setups
	ListSetups(ctx context.Context) ([]*config.SetupInfo, error)
	LoadSetup(ctx context.Context, setupID string) (*config.Setup, error)
}

// GameStore defines game storage operations
type GameStore interface {
	Create(ctx context.Context, game *store.Game) (*store.Game, error)
	Get(ctx context.Context, id string) (*store.Game, error)
	Update(ctx context.Context, id string, fn func(*store.Game) error) (*store.Game, error)
	List() []*store.Game
	Delete(ctx context.Context, id string) error
}

// SetupManager handles starting position loading
type SetupManager interface {
	LoadSetup(id string) (*config.Setup, error)
	ListSetups() ([]*config.SetupInfo, error)
	GetDefault() *config.Setup
}
