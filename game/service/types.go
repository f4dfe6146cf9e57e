package service

import (
	"errors"
	"time"

	"github.com/wricardo/checkers-game/game/config"
	"github.com/wricardo/checkers-game/game/engine"
	"github.com/wricardo/checkers-game/game/store"
)

var (
	// ErrMalformedRequest is returned for requests with missing or invalid fields
	ErrMalformedRequest = errors.New("malformed request")
	ErrSeatTaken        = errors.New("seat already taken")
	ErrWrongPlayer      = errors.New("player does not hold this seat")

	ErrGameNotFound    = store.ErrGameNotFound
	ErrVersionConflict = store.ErrVersionConflict
	ErrSetupNotFound   = config.ErrSetupNotFound
)

// CreateGameRequest starts a new game
type CreateGameRequest struct {
	PlayerID string `json:"player_id,omitempty"`
	SetupID  string `json:"setup_id,omitempty"`
}

// MoveRequest is a move submitted by a client. Coordinates are pointers so
// a missing field can be told apart from zero.
type MoveRequest struct {
	FromRow *int `json:"from_row" validate:"required"`
	FromCol *int `json:"from_col" validate:"required"`
	ToRow   *int `json:"to_row" validate:"required"`
	ToCol   *int `json:"to_col" validate:"required"`

	// Player defaults to the side to move when empty
	Player   engine.Color `json:"player,omitempty" validate:"omitempty,oneof=red black"`
	PlayerID string       `json:"player_id,omitempty" validate:"max=128"`
}

// Move converts validated coordinates into an engine move
func (r MoveRequest) Move() engine.Move {
	return engine.Move{
		From: engine.Position{Row: *r.FromRow, Col: *r.FromCol},
		To:   engine.Position{Row: *r.ToRow, Col: *r.ToCol},
	}
}

// NewMoveRequest builds a request from plain coordinates
func NewMoveRequest(fromRow, fromCol, toRow, toCol int) MoveRequest {
	return MoveRequest{FromRow: &fromRow, FromCol: &fromCol, ToRow: &toRow, ToCol: &toCol}
}

// GameInfo is the client view of a game
type GameInfo struct {
	ID             string           `json:"id"`
	SetupID        string           `json:"setup_id"`
	State          engine.GameState `json:"state"`
	Players        store.Players    `json:"players"`
	MoveCount      int              `json:"move_count"`
	RedPieces      int              `json:"red_pieces"`
	BlackPieces    int              `json:"black_pieces"`
	Version        int64            `json:"version"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
}

// ListOptions filters and orders game listings
type ListOptions struct {
	Status engine.Status `json:"status,omitempty"` // "in_progress", "finished" or empty for all
	Sort   string        `json:"sort,omitempty"`   // "created", "updated" or "accessed" (default)
	Order  string        `json:"order,omitempty"`  // "asc" or "desc" (default)
	Limit  int           `json:"limit,omitempty"`
}

// MoveResult contains the result of an accepted move
type MoveResult struct {
	Game         *GameInfo        `json:"game"`
	Move         engine.Move      `json:"move"`
	Player       engine.Color     `json:"player"`
	Captured     *engine.Position `json:"captured,omitempty"`
	Promoted     bool             `json:"promoted"`
	MustContinue bool             `json:"must_continue"`
	Events       []GameEvent      `json:"events,omitempty"`
}

// LegalMovesResponse lists what the side to move may play
type LegalMovesResponse struct {
	GameID        string           `json:"game_id"`
	CurrentPlayer engine.Color     `json:"current_player"`
	ChainFrom     *engine.Position `json:"chain_from,omitempty"`
	Moves         []engine.Move    `json:"moves"`
}

// Event types
const (
	EventMove      = "move"
	EventCapture   = "capture"
	EventPromotion = "promotion"
	EventChain     = "chain"
	EventGameOver  = "game_over"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []store.MoveRecord `json:"moves"`
	TotalMoves  int                `json:"total_moves"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	TotalPages  int                `json:"total_pages"`
	HasNext     bool               `json:"has_next"`
	HasPrevious bool               `json:"has_previous"`
}
