package store

import (
	"time"

	"github.com/wricardo/checkers-game/game/engine"
)

// Anonymous is the player id recorded when a game is created without one
const Anonymous = "anonymous"

// Players maps each color to the player id seated there. An empty id means
// the seat is open.
type Players struct {
	Red   string `json:"red" bson:"red"`
	Black string `json:"black" bson:"black"`
}

// For returns the player id seated at c
func (p Players) For(c engine.Color) string {
	if c == engine.Black {
		return p.Black
	}
	return p.Red
}

// MoveRecord is one accepted move in a game's history
type MoveRecord struct {
	Seq          int              `json:"seq" bson:"seq"`
	Player       engine.Color     `json:"player" bson:"player"`
	PlayerID     string           `json:"player_id,omitempty" bson:"player_id,omitempty"`
	Move         engine.Move      `json:"move" bson:"move"`
	Captured     *engine.Position `json:"captured,omitempty" bson:"captured,omitempty"`
	Promoted     bool             `json:"promoted" bson:"promoted"`
	MustContinue bool             `json:"must_continue" bson:"must_continue"`
	Timestamp    time.Time        `json:"timestamp" bson:"timestamp"`
}

// Game is the stored record of one game
type Game struct {
	ID      string           `json:"id" bson:"_id"`
	SetupID string           `json:"setup_id" bson:"setup_id"`
	State   engine.GameState `json:"state" bson:"state"`
	Players Players          `json:"players" bson:"players"`
	History []MoveRecord     `json:"history" bson:"history"`

	// Version increases by one on every successful write
	Version int64 `json:"version" bson:"version"`

	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
	LastAccessedAt time.Time `json:"last_accessed_at" bson:"last_accessed_at"`
}

// Clone returns a copy that shares no mutable state with g.
// Pieces are immutable, so the board array copy is enough.
func (g *Game) Clone() *Game {
	c := *g
	c.History = append([]MoveRecord(nil), g.History...)
	if g.State.ChainFrom != nil {
		pos := *g.State.ChainFrom
		c.State.ChainFrom = &pos
	}
	return &c
}
