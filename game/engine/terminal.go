package engine

// Evaluate checks whether the game ended after mover's move.
// The mover wins when the opponent has no pieces left, or has pieces but no
// legal step or jump.
func Evaluate(b Board, mover Color) (finished bool, winner Color) {
	opponent := mover.Opponent()
	if b.Count(opponent) == 0 {
		return true, mover
	}
	if !HasLegalMove(b, opponent) {
		return true, mover
	}
	return false, ""
}

// evaluateMidChain only checks for an empty side: while the mover still has
// to jump, the opponent's mobility can change before the turn passes.
func evaluateMidChain(b Board, mover Color) (finished bool, winner Color) {
	if b.Count(mover.Opponent()) == 0 {
		return true, mover
	}
	return false, ""
}
