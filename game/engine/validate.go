package engine

// diagonals are the four (row, col) unit directions a piece can travel
var diagonals = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// IsLegal reports whether player may make move m on board b.
// It never mutates b. Positions outside the board yield a *CoordinateError
// so callers can tell a malformed request from an illegal move.
func IsLegal(b Board, m Move, player Color) (bool, error) {
	reason, err := Explain(b, m, player)
	if err != nil {
		return false, err
	}
	return reason == ReasonNone, nil
}

// Explain is IsLegal reporting which rule failed, ReasonNone when legal
func Explain(b Board, m Move, player Color) (Reason, error) {
	if err := checkBounds(m); err != nil {
		return ReasonNone, err
	}
	return check(&b, m, player), nil
}

func checkBounds(m Move) error {
	if !m.From.InBounds() {
		return &CoordinateError{Field: "from", Pos: m.From}
	}
	if !m.To.InBounds() {
		return &CoordinateError{Field: "to", Pos: m.To}
	}
	return nil
}

// check applies the rules in order and stops at the first failure.
// Both positions must already be in bounds.
func check(b *Board, m Move, player Color) Reason {
	if !m.To.Dark() {
		return ReasonLightSquare
	}
	if b.at(m.To) != nil {
		return ReasonDestinationOccupied
	}

	piece := b.at(m.From)
	if piece == nil {
		return ReasonNoPiece
	}
	if piece.Color != player {
		return ReasonWrongPiece
	}

	rowDelta := m.To.Row - m.From.Row
	colDelta := abs(m.To.Col - m.From.Col)

	switch {
	case colDelta == 1:
		if abs(rowDelta) != 1 {
			return ReasonNotDiagonal
		}
	case colDelta == 2 && abs(rowDelta) == 2:
		captured := b.at(m.Midpoint())
		if captured == nil || captured.Color == player {
			return ReasonNoCapture
		}
	default:
		return ReasonNotDiagonal
	}

	if !piece.King && sign(rowDelta) != player.forward() {
		return ReasonBackwardMove
	}
	return ReasonNone
}

// JumpsFrom lists the legal jumps for the piece on pos
func JumpsFrom(b Board, pos Position) []Move {
	return movesFrom(&b, pos, 2)
}

// StepsFrom lists the legal non-capturing steps for the piece on pos
func StepsFrom(b Board, pos Position) []Move {
	return movesFrom(&b, pos, 1)
}

func movesFrom(b *Board, pos Position, distance int) []Move {
	if !pos.InBounds() {
		return nil
	}
	piece := b.at(pos)
	if piece == nil {
		return nil
	}

	var moves []Move
	for _, d := range diagonals {
		to := Position{Row: pos.Row + d[0]*distance, Col: pos.Col + d[1]*distance}
		if !to.InBounds() {
			continue
		}
		m := Move{From: pos, To: to}
		if check(b, m, piece.Color) == ReasonNone {
			moves = append(moves, m)
		}
	}
	return moves
}

// hasJump reports whether the piece on pos can capture from there
func hasJump(b *Board, pos Position) bool {
	return len(movesFrom(b, pos, 2)) > 0
}

// LegalMoves lists every legal move for player, jumps first
func LegalMoves(b Board, player Color) []Move {
	var jumps, steps []Move
	for _, pos := range b.Pieces(player) {
		jumps = append(jumps, movesFrom(&b, pos, 2)...)
		steps = append(steps, movesFrom(&b, pos, 1)...)
	}
	return append(jumps, steps...)
}

// HasLegalMove reports whether player has at least one step or jump
func HasLegalMove(b Board, player Color) bool {
	for _, pos := range b.Pieces(player) {
		if len(movesFrom(&b, pos, 2)) > 0 || len(movesFrom(&b, pos, 1)) > 0 {
			return true
		}
	}
	return false
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}
