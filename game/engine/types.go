package engine

// Color identifies one side of the board
type Color string

const (
	Red   Color = "red"
	Black Color = "black"

	// Size is the number of rows and columns on the board
	Size = 8

	// PiecesPerSide is the number of men each side starts with
	PiecesPerSide = 12
)

// Opponent returns the other color
func (c Color) Opponent() Color {
	if c == Red {
		return Black
	}
	return Red
}

// Valid reports whether c names one of the two sides
func (c Color) Valid() bool {
	return c == Red || c == Black
}

// forward is the row delta a man of this color moves by
func (c Color) forward() int {
	if c == Red {
		return -1
	}
	return 1
}

// backRank is the row on which a man of this color is crowned
func (c Color) backRank() int {
	if c == Red {
		return 0
	}
	return Size - 1
}

// Status is the lifecycle stage of a game
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Piece is an immutable value occupying a dark square.
// Promotion replaces the piece; it is never modified in place.
type Piece struct {
	Color Color `json:"color" bson:"color"`
	King  bool  `json:"king" bson:"king"`
}

// Position is a (row, col) coordinate, row 0 at the top
type Position struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

// InBounds reports whether both coordinates are within the board
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// Dark reports whether p is a playable square
func (p Position) Dark() bool {
	return (p.Row+p.Col)%2 == 1
}

// Move is a single step or jump of one piece
type Move struct {
	From Position `json:"from" bson:"from"`
	To   Position `json:"to" bson:"to"`
}

// IsJump reports whether the move spans two diagonals
func (m Move) IsJump() bool {
	return abs(m.To.Row-m.From.Row) == 2 && abs(m.To.Col-m.From.Col) == 2
}

// Midpoint returns the square jumped over by a jump move
func (m Move) Midpoint() Position {
	return Position{Row: (m.From.Row + m.To.Row) / 2, Col: (m.From.Col + m.To.Col) / 2}
}

// GameState is the complete, serializable state of one game
type GameState struct {
	Board         Board  `json:"board" bson:"board"`
	CurrentPlayer Color  `json:"current_player" bson:"current_player"`
	Status        Status `json:"status" bson:"status"`
	Winner        Color  `json:"winner,omitempty" bson:"winner,omitempty"`

	// ChainFrom is set while the current player must continue a multi-jump
	// with the piece standing on this square.
	ChainFrom *Position `json:"chain_from,omitempty" bson:"chain_from,omitempty"`

	MoveCount int `json:"move_count" bson:"move_count"`
}

// Finished reports whether the game has ended
func (s GameState) Finished() bool {
	return s.Status == StatusFinished
}

// Outcome is what SubmitMove returns for an accepted move
type Outcome struct {
	State        GameState `json:"state"`
	Captured     *Position `json:"captured,omitempty"`
	Promoted     bool      `json:"promoted"`
	MustContinue bool      `json:"must_continue"`
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
