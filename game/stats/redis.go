package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "checkers:stats:"

	fieldWins   = "wins"
	fieldLosses = "losses"
	fieldTotal  = "total_games"
)

// RedisStore keeps one hash per player
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisConfig locates the Redis server
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to Redis and pings the server
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Close releases the connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(playerID string) string {
	return s.prefix + playerID
}

func (s *RedisStore) Record(ctx context.Context, playerID string, won bool) error {
	if !counted(playerID) {
		return nil
	}

	field := fieldLosses
	if won {
		field = fieldWins
	}

	key := s.key(playerID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldTotal, 1)
		pipe.HIncrBy(ctx, key, field, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record stats for %s: %w", playerID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, playerID string) (*PlayerStats, error) {
	values, err := s.client.HGetAll(ctx, s.key(playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stats for %s: %w", playerID, err)
	}

	ps := &PlayerStats{PlayerID: playerID}
	for field, dst := range map[string]*int64{
		fieldWins:   &ps.Wins,
		fieldLosses: &ps.Losses,
		fieldTotal:  &ps.TotalGames,
	} {
		raw, ok := values[field]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s counter for %s: %w", field, playerID, err)
		}
		*dst = n
	}
	return ps, nil
}
