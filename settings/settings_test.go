package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", s.Host)
	assert.Equal(t, 8080, s.Port)
	assert.Equal(t, StoreFile, s.Store)
	assert.Equal(t, 24*time.Hour, s.Retention)
	assert.Equal(t, "checkers", s.Mongo.Database)
	assert.Empty(t, s.Redis.Addr)
	assert.Equal(t, "localhost:8080", s.Addr())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CHECKERS_PORT", "9090")
	t.Setenv("CHECKERS_STORE", "mongo")
	t.Setenv("CHECKERS_MONGO_DATABASE", "league")
	t.Setenv("CHECKERS_REDIS_ADDR", "localhost:6379")
	t.Setenv("CHECKERS_LOG_LEVEL", "debug")

	s, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 9090, s.Port)
	assert.Equal(t, StoreMongo, s.Store)
	assert.Equal(t, "league", s.Mongo.Database)
	assert.Equal(t, "localhost:6379", s.Redis.Addr)
	assert.Equal(t, "debug", s.Log.Level)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CHECKERS_GAMES_DIR=/tmp/checkers-games\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("CHECKERS_GAMES_DIR") })

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/checkers-games", s.GamesDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"unknown store", func(s *Settings) { s.Store = "postgres" }},
		{"zero port", func(s *Settings) { s.Port = 0 }},
		{"negative retention", func(s *Settings) { s.Retention = -time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Settings{Store: StoreFile, Port: 8080, Retention: time.Hour}
			tt.modify(s)
			assert.Error(t, s.Validate())
		})
	}
}
