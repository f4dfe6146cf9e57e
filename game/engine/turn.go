package engine

// Turn describes who moves next after an applied move
type Turn struct {
	Player       Color
	MustContinue bool
	ChainFrom    *Position
}

// NextTurn decides whether mover keeps the turn for a multi-jump.
// The turn stays with mover only after a jump that did not crown the piece
// and from whose landing square another jump is available. A promotion
// always ends the turn, even if a further capture would be possible.
func NextTurn(applied Applied, m Move, mover Color) Turn {
	if applied.Captured == nil || applied.Promoted {
		return Turn{Player: mover.Opponent()}
	}
	if !hasJump(&applied.Board, m.To) {
		return Turn{Player: mover.Opponent()}
	}
	landing := m.To
	return Turn{Player: mover, MustContinue: true, ChainFrom: &landing}
}
