package config

import (
	"fmt"

	"github.com/wricardo/checkers-game/game/engine"
)

// Setup is a named starting position stored as setups/<id>.json
type Setup struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	FirstPlayer engine.Color `json:"first_player"`
	Layout      []string     `json:"layout,omitempty"`

	// Grid is the older string-code board ("r", "R", "b", "B", ""),
	// read only when Layout is empty.
	Grid [][]string `json:"board,omitempty"`
}

// SetupInfo summarizes a setup for listings
type SetupInfo struct {
	Filename    string       `json:"filename"`
	SetupID     string       `json:"setup_id"` // The identifier to use for game creation
	Name        string       `json:"name"`
	Description string       `json:"description"`
	FirstPlayer engine.Color `json:"first_player"`
	RedPieces   int          `json:"red_pieces"`
	BlackPieces int          `json:"black_pieces"`
}

// Board parses the layout rows, or the legacy grid when no layout is given
func (s *Setup) Board() (engine.Board, error) {
	if len(s.Layout) == 0 && len(s.Grid) > 0 {
		return engine.DecodeLegacyBoard(s.Grid)
	}
	return engine.ParseBoard(s.Layout)
}

// Validate collects every problem with the setup. An empty slice means the
// setup can start a game.
func (s *Setup) Validate() []string {
	var problems []string

	if s.Name == "" {
		problems = append(problems, "name is required")
	}
	if !s.FirstPlayer.Valid() {
		problems = append(problems, fmt.Sprintf("first_player must be %q or %q, got %q", engine.Red, engine.Black, s.FirstPlayer))
	}

	b, err := s.Board()
	if err != nil {
		return append(problems, fmt.Sprintf("layout: %v", err))
	}

	for _, c := range []engine.Color{engine.Red, engine.Black} {
		count := b.Count(c)
		if count == 0 {
			problems = append(problems, fmt.Sprintf("%s has no pieces", c))
		}
		if count > engine.PiecesPerSide {
			problems = append(problems, fmt.Sprintf("%s has %d pieces, at most %d allowed", c, count, engine.PiecesPerSide))
		}
	}

	// An uncrowned man on the far row would have been promoted already
	for col := 0; col < engine.Size; col++ {
		if p := b[0][col]; p != nil && p.Color == engine.Red && !p.King {
			problems = append(problems, fmt.Sprintf("red man on row 0 at col %d must be a king", col))
		}
		if p := b[engine.Size-1][col]; p != nil && p.Color == engine.Black && !p.King {
			problems = append(problems, fmt.Sprintf("black man on row %d at col %d must be a king", engine.Size-1, col))
		}
	}

	if s.FirstPlayer.Valid() && len(problems) == 0 && !engine.HasLegalMove(b, s.FirstPlayer) {
		problems = append(problems, fmt.Sprintf("%s moves first but has no legal move", s.FirstPlayer))
	}

	return problems
}

// NewGame returns the starting state described by the setup
func (s *Setup) NewGame() (engine.GameState, error) {
	if problems := s.Validate(); len(problems) > 0 {
		return engine.GameState{}, fmt.Errorf("%w: %s", ErrInvalidSetup, problems[0])
	}
	b, err := s.Board()
	if err != nil {
		return engine.GameState{}, err
	}
	return engine.NewGameFromBoard(b, s.FirstPlayer), nil
}

// Classic is the standard starting position
func Classic() *Setup {
	return &Setup{
		Name:        "Classic",
		Description: "Standard 8x8 checkers, twelve men per side, red moves first",
		FirstPlayer: engine.Red,
		Layout:      engine.InitialBoard().Rows(),
	}
}
