package engine

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
)

func TestNewGame(t *testing.T) {
	state := NewGame()

	if state.CurrentPlayer != Red {
		t.Errorf("Expected red to move first, got %s", state.CurrentPlayer)
	}
	if state.Status != StatusInProgress {
		t.Errorf("Expected status %q, got %q", StatusInProgress, state.Status)
	}
	if state.Winner != "" || state.ChainFrom != nil || state.MoveCount != 0 {
		t.Errorf("Expected a clean state, got %+v", state)
	}
	if err := state.Validate(); err != nil {
		t.Errorf("Expected new game to validate, got %v", err)
	}
}

func TestSubmitMove_OpeningStep(t *testing.T) {
	state := NewGame()

	out, err := SubmitMove(state, mv(5, 0, 4, 1), Red)
	if err != nil {
		t.Fatalf("Expected legal move, got %v", err)
	}
	if out.Captured != nil || out.Promoted || out.MustContinue {
		t.Errorf("Expected a plain step, got %+v", out)
	}
	if out.State.CurrentPlayer != Black {
		t.Errorf("Expected black to move, got %s", out.State.CurrentPlayer)
	}
	if out.State.MoveCount != 1 {
		t.Errorf("Expected move count 1, got %d", out.State.MoveCount)
	}
	if state.Board[5][0] == nil || state.CurrentPlayer != Red {
		t.Error("SubmitMove modified its input state")
	}
}

func TestSubmitMove_Rejections(t *testing.T) {
	finished := NewGame()
	finished.Status = StatusFinished
	finished.Winner = Black

	tests := []struct {
		name   string
		state  GameState
		move   Move
		player Color
		kind   error
		reason Reason
		field  string
	}{
		{"light square", NewGame(), mv(5, 0, 4, 0), Red, ErrIllegalMove, ReasonLightSquare, ""},
		{"wrong turn", NewGame(), mv(2, 1, 3, 0), Black, ErrNotYourTurn, ReasonNone, ""},
		{"finished game", finished, mv(5, 0, 4, 1), Red, ErrGameFinished, ReasonNone, ""},
		{"destination off board", NewGame(), mv(5, 0, 4, -1), Red, ErrOutOfBounds, ReasonNone, "to"},
		{"origin off board", NewGame(), mv(8, 1, 7, 0), Red, ErrOutOfBounds, ReasonNone, "from"},
		{"empty origin", NewGame(), mv(4, 1, 3, 0), Red, ErrIllegalMove, ReasonNoPiece, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.state
			_, err := SubmitMove(tt.state, tt.move, tt.player)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("Expected %v, got %v", tt.kind, err)
			}
			var moveErr *MoveError
			if !errors.As(err, &moveErr) {
				t.Fatalf("Expected *MoveError, got %T", err)
			}
			if moveErr.Reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, moveErr.Reason)
			}
			if moveErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, moveErr.Field)
			}
			if tt.state.Board != before.Board || tt.state.CurrentPlayer != before.CurrentPlayer {
				t.Error("Rejected move changed the state")
			}
		})
	}
}

func TestSubmitMove_BlackCapturesLastPiece(t *testing.T) {
	b := MustParseBoard(
		"........",
		"........",
		"...b....",
		"..r.....",
		"........",
		"........",
		"........",
		"........",
	)
	state := NewGameFromBoard(b, Black)

	out, err := SubmitMove(state, mv(2, 3, 4, 1), Black)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Captured == nil || *out.Captured != (Position{Row: 3, Col: 2}) {
		t.Errorf("Expected capture at (3,2), got %+v", out.Captured)
	}
	if out.State.Board[3][2] != nil {
		t.Error("Expected (3,2) to be empty")
	}
	if p := out.State.Board[4][1]; p == nil || p.Color != Black {
		t.Errorf("Expected black on (4,1), got %+v", p)
	}
	if !out.State.Finished() || out.State.Winner != Black {
		t.Errorf("Expected black to win, got status %q winner %q", out.State.Status, out.State.Winner)
	}
}

func TestSubmitMove_Promotion(t *testing.T) {
	b := MustParseBoard(
		"........",
		"........",
		".r......",
		"........",
		"........",
		"......b.",
		"........",
		"........",
	)
	state := NewGameFromBoard(b, Red)

	out, err := SubmitMove(state, mv(2, 1, 1, 2), Red)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Promoted {
		t.Fatal("Row 1 must not promote")
	}
	out, err = SubmitMove(out.State, mv(5, 6, 6, 5), Black)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out, err = SubmitMove(out.State, mv(1, 2, 0, 3), Red)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !out.Promoted {
		t.Error("Expected promotion on row 0")
	}
	if p := out.State.Board[0][3]; p == nil || !p.King {
		t.Errorf("Expected a red king on (0,3), got %+v", p)
	}
}

// Random games from a fixed seed must respect piece accounting on every move.
func TestSubmitMove_RandomPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for game := 0; game < 50; game++ {
		state := NewGame()
		for ply := 0; ply < 300 && !state.Finished(); ply++ {
			moves := LegalMovesFor(state)
			if len(moves) == 0 {
				t.Fatalf("game %d ply %d: no legal moves in an unfinished game\n%s", game, ply, state.Board)
			}
			m := moves[rng.Intn(len(moves))]
			mover := state.CurrentPlayer

			out, err := SubmitMove(state, m, mover)
			if err != nil {
				t.Fatalf("game %d ply %d: listed move %+v rejected: %v", game, ply, m, err)
			}

			next := out.State
			if next.Board.Count(mover) != state.Board.Count(mover) {
				t.Fatalf("game %d ply %d: mover lost a piece", game, ply)
			}
			if next.Board.Kings(mover) < state.Board.Kings(mover) {
				t.Fatalf("game %d ply %d: a king was demoted", game, ply)
			}
			opponentDelta := state.Board.Count(mover.Opponent()) - next.Board.Count(mover.Opponent())
			if m.IsJump() && opponentDelta != 1 {
				t.Fatalf("game %d ply %d: jump removed %d pieces", game, ply, opponentDelta)
			}
			if !m.IsJump() && opponentDelta != 0 {
				t.Fatalf("game %d ply %d: step removed %d pieces", game, ply, opponentDelta)
			}
			if err := next.Validate(); err != nil {
				t.Fatalf("game %d ply %d: invalid state: %v", game, ply, err)
			}
			state = next
		}
	}
}

func TestGameState_JSON(t *testing.T) {
	out, err := SubmitMove(NewGameFromBoard(chainBoard(), Red), mv(6, 1, 4, 3), Red)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := json.Marshal(out.State)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	for _, key := range []string{"board", "current_player", "status", "chain_from", "move_count"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Expected key %q in %s", key, data)
		}
	}
	if _, ok := raw["winner"]; ok {
		t.Error("Winner must be omitted while in progress")
	}

	var decoded GameState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if decoded.Board.String() != out.State.Board.String() {
		t.Errorf("Board mismatch:\n%s\n%s", decoded.Board, out.State.Board)
	}
	if decoded.ChainFrom == nil || *decoded.ChainFrom != *out.State.ChainFrom {
		t.Errorf("Expected chain square to survive, got %+v", decoded.ChainFrom)
	}
	if err := decoded.Validate(); err != nil {
		t.Errorf("Decoded state invalid: %v", err)
	}
}

func TestGameState_Validate(t *testing.T) {
	chain := Position{Row: 4, Col: 1}

	tests := []struct {
		name  string
		state GameState
	}{
		{"unknown status", GameState{Board: InitialBoard(), CurrentPlayer: Red, Status: "paused"}},
		{"bad current player", GameState{Board: InitialBoard(), CurrentPlayer: "green", Status: StatusInProgress}},
		{"winner in progress", GameState{Board: InitialBoard(), CurrentPlayer: Red, Status: StatusInProgress, Winner: Red}},
		{"finished without winner", GameState{Board: InitialBoard(), CurrentPlayer: Red, Status: StatusFinished}},
		{"chain on empty square", GameState{Board: InitialBoard(), CurrentPlayer: Red, Status: StatusInProgress, ChainFrom: &chain}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.state.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
