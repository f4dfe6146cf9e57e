package stats

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store, player string) {
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, player, true))
	require.NoError(t, store.Record(ctx, player, true))
	require.NoError(t, store.Record(ctx, player, false))

	ps, err := store.Get(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, player, ps.PlayerID)
	assert.Equal(t, int64(2), ps.Wins)
	assert.Equal(t, int64(1), ps.Losses)
	assert.Equal(t, int64(3), ps.TotalGames)

	require.NoError(t, store.Record(ctx, Anonymous, true))
	require.NoError(t, store.Record(ctx, "", false))
	anon, err := store.Get(ctx, Anonymous)
	require.NoError(t, err)
	assert.Zero(t, anon.TotalGames)

	unknown, err := store.Get(ctx, player+"-unknown")
	require.NoError(t, err)
	assert.Equal(t, PlayerStats{PlayerID: player + "-unknown"}, *unknown)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(), "alice")
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Record(ctx, "bob", i%2 == 0))
		}(i)
	}
	wg.Wait()

	ps, err := store.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(50), ps.TotalGames)
	assert.Equal(t, ps.TotalGames, ps.Wins+ps.Losses)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("CHECKERS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CHECKERS_TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prefix := fmt.Sprintf("checkers:test:%d:", time.Now().UnixNano())
	store, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Prefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() {
		keys, _ := store.client.Keys(context.Background(), prefix+"*").Result()
		if len(keys) > 0 {
			store.client.Del(context.Background(), keys...)
		}
		_ = store.Close()
	})

	exerciseStore(t, store, "carol")
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
