package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FilePersistence implements Persistence with one JSON file per game
type FilePersistence struct {
	gamesDir string
	mu       sync.Mutex
}

// NewFilePersistence creates a new file-based persistence layer
func NewFilePersistence(gamesDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(gamesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create games directory: %w", err)
	}

	return &FilePersistence{gamesDir: gamesDir}, nil
}

// Save writes the game to <id>.json after checking the stored version
func (fp *FilePersistence) Save(ctx context.Context, game *Game, expectedVersion int64) error {
	if game == nil {
		return fmt.Errorf("game cannot be nil")
	}
	if !validID(game.ID) {
		return fmt.Errorf("invalid game id %q", game.ID)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	current, err := fp.read(game.ID)
	switch {
	case err == nil && current.Version != expectedVersion:
		return ErrVersionConflict
	case err == ErrGameNotFound && expectedVersion != 0:
		return ErrVersionConflict
	case err != nil && err != ErrGameNotFound:
		return err
	}

	data, err := json.MarshalIndent(game, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial document
	tmp, err := os.CreateTemp(fp.gamesDir, game.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write game file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write game file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fp.getFilePath(game.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace game file: %w", err)
	}

	return nil
}

// Load reads a game from its JSON file
func (fp *FilePersistence) Load(ctx context.Context, id string) (*Game, error) {
	if !validID(id) {
		return nil, ErrGameNotFound
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.read(id)
}

func (fp *FilePersistence) read(id string) (*Game, error) {
	data, err := os.ReadFile(fp.getFilePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to read game file: %w", err)
	}

	var game Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", id, err)
	}
	if err := game.State.Validate(); err != nil {
		return nil, fmt.Errorf("stored game %s is corrupt: %w", id, err)
	}
	return &game, nil
}

// Delete removes a game file
func (fp *FilePersistence) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrGameNotFound
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := os.Remove(fp.getFilePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to remove game file: %w", err)
	}
	return nil
}

// ListAll returns all persisted game ids
func (fp *FilePersistence) ListAll(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(fp.gamesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read games directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name := entry.Name(); strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}

// Exists checks if a game file exists
func (fp *FilePersistence) Exists(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	_, err := os.Stat(fp.getFilePath(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.gamesDir, id+".json")
}

// validID rejects ids that could escape the games directory
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
