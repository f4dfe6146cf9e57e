package engine

import (
	"errors"
	"fmt"
)

// NewGame returns a game on the canonical board with Red to move
func NewGame() GameState {
	return NewGameFromBoard(InitialBoard(), Red)
}

// NewGameFromBoard starts a game from an arbitrary position
func NewGameFromBoard(b Board, first Color) GameState {
	return GameState{
		Board:         b,
		CurrentPlayer: first,
		Status:        StatusInProgress,
	}
}

// SubmitMove validates m for player against state and returns the next state.
// A rejected move returns a *MoveError and leaves state untouched.
func SubmitMove(state GameState, m Move, player Color) (Outcome, error) {
	if state.Finished() {
		return Outcome{}, &MoveError{Kind: ErrGameFinished, Move: m, Player: player}
	}
	if player != state.CurrentPlayer {
		return Outcome{}, &MoveError{Kind: ErrNotYourTurn, Move: m, Player: player}
	}
	if err := checkBounds(m); err != nil {
		moveErr := &MoveError{Kind: ErrOutOfBounds, Move: m, Player: player}
		var coordErr *CoordinateError
		if errors.As(err, &coordErr) {
			moveErr.Field = coordErr.Field
		}
		return Outcome{}, moveErr
	}
	if state.ChainFrom != nil && (m.From != *state.ChainFrom || !m.IsJump()) {
		return Outcome{}, &MoveError{Kind: ErrIllegalMove, Reason: ReasonMustContinueChain, Move: m, Player: player}
	}
	if reason := check(&state.Board, m, player); reason != ReasonNone {
		return Outcome{}, &MoveError{Kind: ErrIllegalMove, Reason: reason, Move: m, Player: player}
	}

	applied := Apply(state.Board, m)
	turn := NextTurn(applied, m, player)

	next := state
	next.Board = applied.Board
	next.CurrentPlayer = turn.Player
	next.ChainFrom = turn.ChainFrom
	next.MoveCount++

	var finished bool
	var winner Color
	if turn.MustContinue {
		finished, winner = evaluateMidChain(next.Board, player)
	} else {
		finished, winner = Evaluate(next.Board, player)
	}
	if finished {
		next.Status = StatusFinished
		next.Winner = winner
		next.ChainFrom = nil
	}

	return Outcome{
		State:        next,
		Captured:     applied.Captured,
		Promoted:     applied.Promoted,
		MustContinue: turn.MustContinue && !finished,
	}, nil
}

// LegalMovesFor lists the moves the side to move may submit, honouring a
// pending multi-jump. A finished game has none.
func LegalMovesFor(state GameState) []Move {
	if state.Finished() {
		return nil
	}
	if state.ChainFrom != nil {
		return JumpsFrom(state.Board, *state.ChainFrom)
	}
	return LegalMoves(state.Board, state.CurrentPlayer)
}

// Validate checks a state loaded from storage for consistency
func (s GameState) Validate() error {
	if err := s.Board.Validate(); err != nil {
		return err
	}
	switch s.Status {
	case StatusInProgress:
		if !s.CurrentPlayer.Valid() {
			return fmt.Errorf("state validation: invalid current player %q", s.CurrentPlayer)
		}
		if s.Winner != "" {
			return fmt.Errorf("state validation: winner set on a game in progress")
		}
	case StatusFinished:
		if !s.Winner.Valid() {
			return fmt.Errorf("state validation: finished game without a winner")
		}
	default:
		return fmt.Errorf("state validation: unknown status %q", s.Status)
	}
	if s.ChainFrom != nil {
		if !s.ChainFrom.InBounds() {
			return fmt.Errorf("state validation: chain square (%d,%d) out of bounds", s.ChainFrom.Row, s.ChainFrom.Col)
		}
		p := s.Board[s.ChainFrom.Row][s.ChainFrom.Col]
		if p == nil || p.Color != s.CurrentPlayer {
			return fmt.Errorf("state validation: chain square (%d,%d) does not hold a %s piece", s.ChainFrom.Row, s.ChainFrom.Col, s.CurrentPlayer)
		}
	}
	return nil
}
