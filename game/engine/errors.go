package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotYourTurn  = errors.New("not your turn")
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrIllegalMove  = errors.New("illegal move")
	ErrGameFinished = errors.New("game already finished")
)

// Reason identifies which checkers rule rejected a move
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonNoPiece             Reason = "no_piece"
	ReasonWrongPiece          Reason = "wrong_piece"
	ReasonDestinationOccupied Reason = "destination_occupied"
	ReasonLightSquare         Reason = "light_square"
	ReasonNotDiagonal         Reason = "not_diagonal"
	ReasonBackwardMove        Reason = "backward_move"
	ReasonNoCapture           Reason = "no_capture"
	ReasonMustContinueChain   Reason = "must_continue_chain"
)

var reasonText = map[Reason]string{
	ReasonNoPiece:             "no piece at the starting square",
	ReasonWrongPiece:          "piece belongs to the other player",
	ReasonDestinationOccupied: "destination square is occupied",
	ReasonLightSquare:         "destination is a light square",
	ReasonNotDiagonal:         "move is not a one- or two-square diagonal",
	ReasonBackwardMove:        "only kings may move backward",
	ReasonNoCapture:           "no opponent piece to capture",
	ReasonMustContinueChain:   "the capturing piece must continue jumping",
}

// String returns a human-readable description of the rule
func (r Reason) String() string {
	if text, ok := reasonText[r]; ok {
		return text
	}
	return string(r)
}

// CoordinateError reports a position outside the board
type CoordinateError struct {
	Field string
	Pos   Position
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%s (%d,%d) is outside the %dx%d board", e.Field, e.Pos.Row, e.Pos.Col, Size, Size)
}

func (e *CoordinateError) Unwrap() error {
	return ErrOutOfBounds
}

// MoveError is returned by SubmitMove for every rejected move.
// Kind is one of the package sentinels; Reason is set for illegal moves.
type MoveError struct {
	Kind   error
	Reason Reason
	Field  string
	Move   Move
	Player Color
}

func (e *MoveError) Error() string {
	switch {
	case e.Reason != ReasonNone:
		return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Field)
	default:
		return e.Kind.Error()
	}
}

func (e *MoveError) Unwrap() error {
	return e.Kind
}
