package engine

// Applied is the result of applying a move to a board
type Applied struct {
	Board    Board     `json:"board"`
	Captured *Position `json:"captured,omitempty"`
	Promoted bool      `json:"promoted"`
}

// Apply returns the board after m. The input board is never modified.
// m must already have been validated; Apply does not re-check legality.
func Apply(b Board, m Move) Applied {
	// Board is an array, so b is already a copy. Pieces are shared but
	// never mutated: promotion installs a new Piece.
	next := b
	piece := next.at(m.From)
	next[m.From.Row][m.From.Col] = nil
	next[m.To.Row][m.To.Col] = piece

	result := Applied{}
	if m.IsJump() {
		mid := m.Midpoint()
		next[mid.Row][mid.Col] = nil
		result.Captured = &mid
	}

	if piece != nil && !piece.King && m.To.Row == piece.Color.backRank() {
		next[m.To.Row][m.To.Col] = &Piece{Color: piece.Color, King: true}
		result.Promoted = true
	}

	result.Board = next
	return result
}
