package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager keeps games in memory in front of an optional Persistence.
// Updates to one game are serialized; different games proceed in parallel.
type Manager struct {
	games       map[string]*Game
	locks       map[string]*sync.Mutex
	persistence Persistence
	logger      *zap.Logger
	mu          sync.RWMutex
}

// NewManager creates a memory-only manager
func NewManager(logger *zap.Logger) *Manager {
	return NewManagerWithPersistence(nil, logger)
}

// NewManagerWithPersistence creates a manager that writes through to p
func NewManagerWithPersistence(p Persistence, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		games:       make(map[string]*Game),
		locks:       make(map[string]*sync.Mutex),
		persistence: p,
		logger:      logger,
	}
}

// Create stores a new game at version 1. An empty ID is replaced by a new uuid.
func (m *Manager) Create(ctx context.Context, game *Game) (*Game, error) {
	g := game.Clone()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now()
	g.Version = 1
	g.CreatedAt = now
	g.UpdatedAt = now
	g.LastAccessedAt = now

	lock := m.lockFor(g.ID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	_, exists := m.games[g.ID]
	m.mu.RUnlock()
	if exists {
		return nil, ErrGameAlreadyExists
	}

	if m.persistence != nil {
		if err := m.persistence.Save(ctx, g, 0); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				return nil, ErrGameAlreadyExists
			}
			return nil, fmt.Errorf("failed to persist game: %w", err)
		}
	}

	m.mu.Lock()
	m.games[g.ID] = g
	m.mu.Unlock()

	return g.Clone(), nil
}

// Get returns a copy of the game, loading it from persistence when it is
// not cached
func (m *Manager) Get(ctx context.Context, id string) (*Game, error) {
	g, err := m.current(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	g.LastAccessedAt = time.Now()
	c := g.Clone()
	m.mu.Unlock()

	return c, nil
}

// current returns the cached game, loading it on a miss
func (m *Manager) current(ctx context.Context, id string) (*Game, error) {
	m.mu.RLock()
	g, exists := m.games[id]
	m.mu.RUnlock()
	if exists {
		return g, nil
	}

	if m.persistence == nil {
		return nil, ErrGameNotFound
	}

	loaded, err := m.persistence.Load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load persisted game: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it meanwhile
	if g, exists := m.games[id]; exists {
		return g, nil
	}
	m.games[id] = loaded
	return loaded, nil
}

// Update applies fn to a copy of the game and stores the result with the
// version bumped. If fn returns an error nothing is written. A concurrent
// write through another process surfaces as ErrVersionConflict.
func (m *Manager) Update(ctx context.Context, id string, fn func(*Game) error) (*Game, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	current, err := m.current(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	next := current.Clone()
	m.mu.RUnlock()

	if err := fn(next); err != nil {
		return nil, err
	}

	expected := current.Version
	now := time.Now()
	next.ID = id
	next.Version = expected + 1
	next.UpdatedAt = now
	next.LastAccessedAt = now

	if m.persistence != nil {
		if err := m.persistence.Save(ctx, next, expected); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				// Drop the stale copy so the next read reloads it
				m.mu.Lock()
				delete(m.games, id)
				m.mu.Unlock()
				m.logger.Warn("version conflict on game update",
					zap.String("game_id", id), zap.Int64("expected_version", expected))
				return nil, ErrVersionConflict
			}
			return nil, fmt.Errorf("failed to persist game: %w", err)
		}
	}

	m.mu.Lock()
	m.games[id] = next
	m.mu.Unlock()

	return next.Clone(), nil
}

// List returns copies of all cached games
func (m *Manager) List() []*Game {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		result = append(result, g.Clone())
	}
	return result
}

// Delete removes a game from memory and persistence
func (m *Manager) Delete(ctx context.Context, id string) error {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	_, inMemory := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()

	if m.persistence != nil {
		err := m.persistence.Delete(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrGameNotFound) {
			return fmt.Errorf("failed to delete persisted game: %w", err)
		}
	}

	if !inMemory {
		return ErrGameNotFound
	}
	return nil
}

// DeleteFromMemory evicts a game from the cache only
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.games[id]; !exists {
		return ErrGameNotFound
	}
	delete(m.games, id)
	return nil
}

// CleanupExpired evicts games not accessed within maxAge from memory.
// Persisted copies are kept and reload on the next access.
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, g := range m.games {
		if g.LastAccessedAt.Before(cutoff) {
			delete(m.games, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of cached games
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// LoadPersisted warms the cache with every persisted game
func (m *Manager) LoadPersisted(ctx context.Context) error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list persisted games: %w", err)
	}

	loaded := 0
	for _, id := range ids {
		m.mu.RLock()
		_, exists := m.games[id]
		m.mu.RUnlock()
		if exists {
			continue
		}

		g, err := m.persistence.Load(ctx, id)
		if err != nil {
			m.logger.Warn("failed to load persisted game", zap.String("game_id", id), zap.Error(err))
			continue
		}

		m.mu.Lock()
		if _, exists := m.games[id]; !exists {
			m.games[id] = g
			loaded++
		}
		m.mu.Unlock()
	}

	if loaded > 0 {
		m.logger.Info("loaded persisted games", zap.Int("count", loaded))
	}
	return nil
}

func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}
