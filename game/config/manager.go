package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/checkers-game/game/engine"
)

var (
	ErrSetupNotFound = errors.New("setup not found")
	ErrInvalidSetup  = errors.New("invalid setup")
)

// DefaultSetupID names the setup used when none is requested
const DefaultSetupID = "classic"

// Manager handles setup loading and caching
type Manager struct {
	setupDir     string
	defaultSetup *Setup
	setups       map[string]*Setup
	mu           sync.RWMutex
}

// NewManager creates a new setup manager
func NewManager(setupDir string) (*Manager, error) {
	if _, err := os.Stat(setupDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("setup directory does not exist: %s", setupDir)
	}

	m := &Manager{
		setupDir: setupDir,
		setups:   make(map[string]*Setup),
	}

	if err := m.loadDefaultSetup(); err != nil {
		return nil, fmt.Errorf("failed to load default setup: %w", err)
	}

	return m, nil
}

// LoadSetup loads a setup by id (file name without extension)
func (m *Manager) LoadSetup(id string) (*Setup, error) {
	id = strings.TrimSuffix(id, ".json")

	m.mu.RLock()
	if setup, exists := m.setups[id]; exists {
		m.mu.RUnlock()
		return setup, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if setup, exists := m.setups[id]; exists {
		return setup, nil
	}

	if strings.ContainsAny(id, `/\`) || id == "" || id == "." || id == ".." {
		return nil, ErrSetupNotFound
	}

	data, err := os.ReadFile(filepath.Join(m.setupDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			// The classic position is always available
			if id == DefaultSetupID {
				return Classic(), nil
			}
			return nil, ErrSetupNotFound
		}
		return nil, fmt.Errorf("failed to read setup file: %w", err)
	}

	setup, err := ParseSetup(data)
	if err != nil {
		return nil, err
	}

	m.setups[id] = setup
	return setup, nil
}

// ParseSetup decodes and validates a setup document
func ParseSetup(data []byte) (*Setup, error) {
	var setup Setup
	if err := json.Unmarshal(data, &setup); err != nil {
		return nil, fmt.Errorf("failed to parse setup: %w", err)
	}
	if problems := setup.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSetup, strings.Join(problems, "; "))
	}
	return &setup, nil
}

// ListSetups returns information about all valid setups in the directory.
// The classic setup is always included.
func (m *Manager) ListSetups() ([]*SetupInfo, error) {
	entries, err := os.ReadDir(m.setupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read setup directory: %w", err)
	}

	var setups []*SetupInfo
	hasClassic := false

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		setup, err := m.LoadSetup(id)
		if err != nil {
			// Skip invalid setups
			continue
		}
		if id == DefaultSetupID {
			hasClassic = true
		}
		setups = append(setups, newSetupInfo(entry.Name(), id, setup))
	}

	if !hasClassic {
		setups = append(setups, newSetupInfo("", DefaultSetupID, Classic()))
	}

	sort.Slice(setups, func(i, j int) bool { return setups[i].SetupID < setups[j].SetupID })
	return setups, nil
}

func newSetupInfo(filename, id string, setup *Setup) *SetupInfo {
	info := &SetupInfo{
		Filename:    filename,
		SetupID:     id,
		Name:        setup.Name,
		Description: setup.Description,
		FirstPlayer: setup.FirstPlayer,
	}
	if b, err := setup.Board(); err == nil {
		info.RedPieces = b.Count(engine.Red)
		info.BlackPieces = b.Count(engine.Black)
	}
	return info
}

// GetDefault returns the default setup
func (m *Manager) GetDefault() *Setup {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultSetup
}

// SetDefault sets the default setup by id
func (m *Manager) SetDefault(id string) error {
	setup, err := m.LoadSetup(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultSetup = setup
	return nil
}

// RefreshCache drops cached setups so edited files are re-read
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.setups = make(map[string]*Setup)
	m.mu.Unlock()

	return m.loadDefaultSetup()
}

func (m *Manager) loadDefaultSetup() error {
	setup, err := m.LoadSetup(DefaultSetupID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultSetup = setup
	m.mu.Unlock()
	return nil
}

// SaveSetup validates and writes a setup to disk
func (m *Manager) SaveSetup(id string, setup *Setup) error {
	id = strings.TrimSuffix(id, ".json")
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: invalid setup id %q", ErrInvalidSetup, id)
	}
	if problems := setup.Validate(); len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSetup, strings.Join(problems, "; "))
	}

	data, err := json.MarshalIndent(setup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal setup: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.setupDir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write setup file: %w", err)
	}

	m.mu.Lock()
	m.setups[id] = setup
	m.mu.Unlock()

	return nil
}
