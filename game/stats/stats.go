// Package stats records per-player win and loss counts.
//
// Games created without a player id are recorded under "anonymous" and are
// never counted. MemoryStore serves single-process deployments; RedisStore
// shares counters between server instances.
package stats

import (
	"context"
	"sync"
)

// Anonymous matches the player id stored for games created without one
const Anonymous = "anonymous"

// PlayerStats is the record returned for one player
type PlayerStats struct {
	PlayerID   string `json:"player_id"`
	Wins       int64  `json:"wins"`
	Losses     int64  `json:"losses"`
	TotalGames int64  `json:"total_games"`
}

// Store keeps player statistics
type Store interface {
	// Record counts one finished game for playerID
	Record(ctx context.Context, playerID string, won bool) error
	// Get returns zeroed stats for an unknown player
	Get(ctx context.Context, playerID string) (*PlayerStats, error)
}

// counted reports whether a player id accumulates statistics
func counted(playerID string) bool {
	return playerID != "" && playerID != Anonymous
}

// MemoryStore keeps statistics in process memory
type MemoryStore struct {
	players map[string]PlayerStats
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{players: make(map[string]PlayerStats)}
}

func (s *MemoryStore) Record(ctx context.Context, playerID string, won bool) error {
	if !counted(playerID) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ps := s.players[playerID]
	ps.PlayerID = playerID
	ps.TotalGames++
	if won {
		ps.Wins++
	} else {
		ps.Losses++
	}
	s.players[playerID] = ps
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, playerID string) (*PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ps, ok := s.players[playerID]
	if !ok {
		ps = PlayerStats{PlayerID: playerID}
	}
	return &ps, nil
}
