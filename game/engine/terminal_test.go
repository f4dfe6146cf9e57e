package engine

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		board    Board
		mover    Color
		finished bool
		winner   Color
	}{
		{
			name:     "initial board",
			board:    InitialBoard(),
			mover:    Red,
			finished: false,
		},
		{
			name: "no black pieces",
			board: MustParseBoard(
				"........",
				"........",
				"........",
				"........",
				"...r....",
				"........",
				"........",
				"........",
			),
			mover:    Red,
			finished: true,
			winner:   Red,
		},
		{
			name: "black blocked",
			board: MustParseBoard(
				"........",
				"........",
				"........",
				"........",
				"........",
				"........",
				".b......",
				"r.r.....",
			),
			mover:    Red,
			finished: true,
			winner:   Red,
		},
		{
			name: "no red pieces",
			board: MustParseBoard(
				"........",
				"..b.....",
				"........",
				"........",
				"........",
				"........",
				"........",
				"........",
			),
			mover:    Black,
			finished: true,
			winner:   Black,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finished, winner := Evaluate(tt.board, tt.mover)
			if finished != tt.finished {
				t.Errorf("Expected finished=%v, got %v", tt.finished, finished)
			}
			if winner != tt.winner {
				t.Errorf("Expected winner %q, got %q", tt.winner, winner)
			}
		})
	}
}

func TestSubmitMove_BlockingWin(t *testing.T) {
	b := MustParseBoard(
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		".b.R....",
		"r.......",
	)
	state := NewGameFromBoard(b, Red)

	out, err := SubmitMove(state, mv(6, 3, 7, 2), Red)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !out.State.Finished() {
		t.Fatal("Expected game to finish when black has no legal move")
	}
	if out.State.Winner != Red {
		t.Errorf("Expected red to win, got %q", out.State.Winner)
	}
	if out.State.Board.Count(Black) != 1 {
		t.Error("Blocking win must leave the black piece on the board")
	}
	if moves := LegalMovesFor(out.State); moves != nil {
		t.Errorf("Expected no legal moves in a finished game, got %v", moves)
	}
}
