package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/checkers-game/game/engine"
)

func createValidSetup() *Setup {
	return &Setup{
		Name:        "Test Setup",
		Description: "Test setup",
		FirstPlayer: engine.Red,
		Layout: []string{
			"........",
			"..b.....",
			"........",
			"........",
			"........",
			"........",
			".r......",
			"........",
		},
	}
}

func writeSetupFile(t *testing.T, dir, name string, setup *Setup) {
	t.Helper()
	data, err := json.MarshalIndent(setup, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write setup file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		classic := Classic()
		classic.Description = "From disk"
		writeSetupFile(t, dir, DefaultSetupID, classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Description != "From disk" {
			t.Errorf("Expected default loaded from disk, got %q", manager.GetDefault().Description)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("missing classic setup", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without setup files, got: %v", err)
		}
		def := manager.GetDefault()
		if def == nil || def.Name != "Classic" {
			t.Fatalf("Expected built-in classic setup, got %+v", def)
		}
		b, err := def.Board()
		if err != nil {
			t.Fatalf("Built-in setup does not parse: %v", err)
		}
		if b.Rows()[5] != engine.InitialBoard().Rows()[5] {
			t.Error("Expected built-in setup to match the initial board")
		}
	})
}

func TestManager_LoadSetup(t *testing.T) {
	dir := t.TempDir()
	writeSetupFile(t, dir, "endgame", createValidSetup())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing setup", func(t *testing.T) {
		setup, err := manager.LoadSetup("endgame")
		if err != nil {
			t.Fatalf("Failed to load setup: %v", err)
		}
		if setup.Name != "Test Setup" {
			t.Errorf("Expected name 'Test Setup', got '%s'", setup.Name)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		if _, err := manager.LoadSetup("endgame.json"); err != nil {
			t.Fatalf("Failed to load setup with extension: %v", err)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		first, _ := manager.LoadSetup("endgame")
		second, err := manager.LoadSetup("endgame")
		if err != nil {
			t.Fatalf("Failed to load setup from cache: %v", err)
		}
		if first != second {
			t.Error("Expected setup to be loaded from cache")
		}
	})

	t.Run("load non-existent setup", func(t *testing.T) {
		if _, err := manager.LoadSetup("missing"); !errors.Is(err, ErrSetupNotFound) {
			t.Errorf("Expected ErrSetupNotFound, got %v", err)
		}
	})

	t.Run("reject path traversal", func(t *testing.T) {
		if _, err := manager.LoadSetup("../endgame"); !errors.Is(err, ErrSetupNotFound) {
			t.Errorf("Expected ErrSetupNotFound, got %v", err)
		}
	})

	t.Run("load invalid setup", func(t *testing.T) {
		bad := createValidSetup()
		bad.Layout[1] = ".b......"
		writeSetupFile(t, dir, "invalid", bad)

		_, err := manager.LoadSetup("invalid")
		if !errors.Is(err, ErrInvalidSetup) {
			t.Errorf("Expected ErrInvalidSetup, got %v", err)
		}
	})

	t.Run("load malformed json", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := manager.LoadSetup("broken"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_ListSetups(t *testing.T) {
	dir := t.TempDir()
	writeSetupFile(t, dir, "endgame", createValidSetup())
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	setups, err := manager.ListSetups()
	if err != nil {
		t.Fatalf("Failed to list setups: %v", err)
	}
	if len(setups) != 2 {
		t.Fatalf("Expected 2 setups (classic and endgame), got %d", len(setups))
	}
	if setups[0].SetupID != DefaultSetupID || setups[1].SetupID != "endgame" {
		t.Errorf("Unexpected setup ids: %s, %s", setups[0].SetupID, setups[1].SetupID)
	}
	if setups[1].RedPieces != 1 || setups[1].BlackPieces != 1 {
		t.Errorf("Expected 1 piece per side, got red=%d black=%d", setups[1].RedPieces, setups[1].BlackPieces)
	}
	if setups[0].RedPieces != engine.PiecesPerSide {
		t.Errorf("Expected %d red pieces in classic, got %d", engine.PiecesPerSide, setups[0].RedPieces)
	}
}

func TestManager_SaveSetup(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SaveSetup("saved", createValidSetup()); err != nil {
		t.Fatalf("Failed to save setup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected setup file on disk: %v", err)
	}
	if err := manager.SetDefault("saved"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if manager.GetDefault().Name != "Test Setup" {
		t.Errorf("Expected saved setup as default, got %q", manager.GetDefault().Name)
	}

	invalid := createValidSetup()
	invalid.FirstPlayer = "green"
	if err := manager.SaveSetup("invalid", invalid); !errors.Is(err, ErrInvalidSetup) {
		t.Errorf("Expected ErrInvalidSetup, got %v", err)
	}
	if err := manager.SaveSetup("../escape", createValidSetup()); !errors.Is(err, ErrInvalidSetup) {
		t.Errorf("Expected ErrInvalidSetup for bad id, got %v", err)
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeSetupFile(t, dir, "endgame", createValidSetup())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if _, err := manager.LoadSetup("endgame"); err != nil {
		t.Fatal(err)
	}

	updated := createValidSetup()
	updated.Name = "Updated"
	writeSetupFile(t, dir, "endgame", updated)

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh cache: %v", err)
	}
	setup, err := manager.LoadSetup("endgame")
	if err != nil {
		t.Fatal(err)
	}
	if setup.Name != "Updated" {
		t.Errorf("Expected refreshed name 'Updated', got %q", setup.Name)
	}
}

func TestManager_Concurrency(t *testing.T) {
	dir := t.TempDir()
	writeSetupFile(t, dir, "endgame", createValidSetup())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadSetup("endgame"); err != nil {
				t.Errorf("Concurrent load failed: %v", err)
			}
			_ = manager.GetDefault()
		}()
	}
	wg.Wait()
}

func TestSetup_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Setup)
		problem string
	}{
		{"missing name", func(s *Setup) { s.Name = "" }, "name is required"},
		{"bad first player", func(s *Setup) { s.FirstPlayer = "white" }, "first_player"},
		{"short layout", func(s *Setup) { s.Layout = s.Layout[:7] }, "layout"},
		{"no black pieces", func(s *Setup) { s.Layout[1] = "........" }, "black has no pieces"},
		{"uncrowned red man on row 0", func(s *Setup) { s.Layout[0] = ".r......" }, "must be a king"},
		{"uncrowned black man on row 7", func(s *Setup) { s.Layout[7] = "b......." }, "must be a king"},
		{"first player stuck", func(s *Setup) {
			s.Layout[4] = "...b...."
			s.Layout[5] = "b.b....."
		}, "no legal move"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := createValidSetup()
			setup.Layout = append([]string(nil), setup.Layout...)
			tt.modify(setup)

			problems := setup.Validate()
			if len(problems) == 0 {
				t.Fatal("Expected validation problems")
			}
			if !strings.Contains(strings.Join(problems, "; "), tt.problem) {
				t.Errorf("Expected problem containing %q, got %v", tt.problem, problems)
			}
		})
	}

	if problems := createValidSetup().Validate(); len(problems) != 0 {
		t.Errorf("Expected valid setup, got %v", problems)
	}
}

func TestSetup_NewGame(t *testing.T) {
	setup := createValidSetup()
	setup.FirstPlayer = engine.Black

	state, err := setup.NewGame()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if state.CurrentPlayer != engine.Black {
		t.Errorf("Expected black to move first, got %s", state.CurrentPlayer)
	}
	if state.Status != engine.StatusInProgress {
		t.Errorf("Expected game in progress, got %s", state.Status)
	}

	setup.Name = ""
	if _, err := setup.NewGame(); !errors.Is(err, ErrInvalidSetup) {
		t.Errorf("Expected ErrInvalidSetup, got %v", err)
	}
}

func TestSetup_LegacyGrid(t *testing.T) {
	grid := engine.EncodeLegacyBoard(engine.InitialBoard())
	data, err := json.Marshal(map[string]interface{}{
		"name":         "Legacy",
		"first_player": "red",
		"board":        grid,
	})
	if err != nil {
		t.Fatalf("Failed to marshal setup: %v", err)
	}

	setup, err := ParseSetup(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	state, err := setup.NewGame()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got, want := state.Board.String(), engine.InitialBoard().String(); got != want {
		t.Errorf("Expected the initial position, got\n%s", got)
	}

	grid[0][0] = "x"
	setup.Grid = grid
	if problems := setup.Validate(); len(problems) == 0 {
		t.Error("Expected a problem for an invalid legacy cell")
	}
}
