// Package settings holds the process configuration read from the environment.
//
// Every field can be set with a CHECKERS_ prefixed variable, for example
// CHECKERS_PORT=9090 or CHECKERS_STORE=mongo. A .env file in the working
// directory is loaded first when present. Command line flags override the
// loaded values in main.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix for every setting
const Prefix = "CHECKERS"

// Store backends
const (
	StoreFile   = "file"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Settings is the complete process configuration
type Settings struct {
	Host      string `envconfig:"HOST" default:"localhost"`
	Port      int    `envconfig:"PORT" default:"8080"`
	SetupsDir string `envconfig:"SETUPS_DIR" default:"setups"`
	GamesDir  string `envconfig:"GAMES_DIR" default:"games"`
	Store     string `envconfig:"STORE" default:"file"`

	// Retention is how long an untouched game stays in memory
	Retention time.Duration `envconfig:"RETENTION" default:"24h"`

	Mongo struct {
		URI        string `envconfig:"URI" default:"mongodb://localhost:27017"`
		Database   string `envconfig:"DATABASE" default:"checkers"`
		Collection string `envconfig:"COLLECTION" default:"games"`
	}

	// Redis backs player statistics when Addr is set
	Redis struct {
		Addr     string `envconfig:"ADDR"`
		Password string `envconfig:"PASSWORD"`
		DB       int    `envconfig:"DB" default:"0"`
	}

	Log struct {
		Level string `envconfig:"LEVEL" default:"info"`
		File  string `envconfig:"FILE"`
		JSON  bool   `envconfig:"JSON" default:"false"`
	}

	Ngrok struct {
		Enabled   bool   `envconfig:"ENABLED" default:"false"`
		AuthToken string `envconfig:"AUTHTOKEN"`
		Domain    string `envconfig:"DOMAIN"`
	}
}

// Load reads an optional .env file and then the environment.
// A missing .env file is not an error.
func Load(envFiles ...string) (*Settings, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var s Settings
	if err := envconfig.Process(Prefix, &s); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values envconfig cannot constrain on its own
func (s *Settings) Validate() error {
	switch s.Store {
	case StoreFile, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q (want %s, %s or %s)", s.Store, StoreFile, StoreMongo, StoreMemory)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port %d out of range", s.Port)
	}
	if s.Retention <= 0 {
		return fmt.Errorf("retention must be positive, got %s", s.Retention)
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
