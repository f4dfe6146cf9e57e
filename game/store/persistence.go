package store

import (
	"context"
	"errors"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrVersionConflict   = errors.New("game was modified concurrently")
)

// Persistence stores game records durably.
//
// Save writes game only if the stored copy still has expectedVersion;
// expectedVersion 0 means the game must not exist yet. A mismatch returns
// ErrVersionConflict and leaves storage untouched.
type Persistence interface {
	Save(ctx context.Context, game *Game, expectedVersion int64) error
	Load(ctx context.Context, id string) (*Game, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, id string) (bool, error)
}
