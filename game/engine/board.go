package engine

import (
	"fmt"
	"strings"
)

// Board is the 8x8 grid indexed [row][col]. A nil entry is an empty square.
type Board [Size][Size]*Piece

// InitialBoard returns the canonical starting position: Black on rows 0-2,
// Red on rows 5-7, every piece on a dark square.
func InitialBoard() Board {
	var b Board
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if !(Position{Row: row, Col: col}).Dark() {
				continue
			}
			switch {
			case row <= 2:
				b[row][col] = &Piece{Color: Black}
			case row >= Size-3:
				b[row][col] = &Piece{Color: Red}
			}
		}
	}
	return b
}

// PieceAt returns the piece on pos, or nil for an empty square
func PieceAt(b Board, pos Position) (*Piece, error) {
	if !pos.InBounds() {
		return nil, &CoordinateError{Field: "position", Pos: pos}
	}
	return b[pos.Row][pos.Col], nil
}

// at assumes pos is in bounds
func (b *Board) at(pos Position) *Piece {
	return b[pos.Row][pos.Col]
}

// Count returns the number of pieces of the given color
func (b Board) Count(c Color) int {
	count := 0
	for _, row := range b {
		for _, p := range row {
			if p != nil && p.Color == c {
				count++
			}
		}
	}
	return count
}

// Kings returns the number of crowned pieces of the given color
func (b Board) Kings(c Color) int {
	count := 0
	for _, row := range b {
		for _, p := range row {
			if p != nil && p.Color == c && p.King {
				count++
			}
		}
	}
	return count
}

// Pieces lists the squares occupied by the given color in row-major order
func (b Board) Pieces(c Color) []Position {
	var positions []Position
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if p := b[row][col]; p != nil && p.Color == c {
				positions = append(positions, Position{Row: row, Col: col})
			}
		}
	}
	return positions
}

// Validate checks the structural invariants of a board
func (b Board) Validate() error {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			p := b[row][col]
			if p == nil {
				continue
			}
			if !p.Color.Valid() {
				return fmt.Errorf("board validation: invalid color %q at (%d,%d)", p.Color, row, col)
			}
			if !(Position{Row: row, Col: col}).Dark() {
				return fmt.Errorf("board validation: piece on light square (%d,%d)", row, col)
			}
		}
	}
	return nil
}

// Layout characters used by ParseBoard and Rows
const (
	LayoutEmpty     = '.'
	LayoutRed       = 'r'
	LayoutRedKing   = 'R'
	LayoutBlack     = 'b'
	LayoutBlackKing = 'B'
)

// ParseBoard builds a board from 8 layout rows of 8 characters each.
// '.' or '_' is empty, 'r'/'b' are men and 'R'/'B' are kings.
func ParseBoard(rows []string) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("layout must have %d rows, got %d", Size, len(rows))
	}
	for row, line := range rows {
		if len(line) != Size {
			return b, fmt.Errorf("layout row %d must have %d characters, got %d", row, Size, len(line))
		}
		for col := 0; col < Size; col++ {
			switch line[col] {
			case LayoutEmpty, '_':
			case LayoutRed:
				b[row][col] = &Piece{Color: Red}
			case LayoutRedKing:
				b[row][col] = &Piece{Color: Red, King: true}
			case LayoutBlack:
				b[row][col] = &Piece{Color: Black}
			case LayoutBlackKing:
				b[row][col] = &Piece{Color: Black, King: true}
			default:
				return b, fmt.Errorf("invalid character '%c' at row %d, col %d", line[col], row, col)
			}
		}
	}
	if err := b.Validate(); err != nil {
		return b, err
	}
	return b, nil
}

// MustParseBoard is ParseBoard for fixed layouts known to be valid
func MustParseBoard(rows ...string) Board {
	b, err := ParseBoard(rows)
	if err != nil {
		panic(err)
	}
	return b
}

// Rows renders the board in the layout format accepted by ParseBoard
func (b Board) Rows() []string {
	rows := make([]string, Size)
	for row := 0; row < Size; row++ {
		var sb strings.Builder
		for col := 0; col < Size; col++ {
			sb.WriteByte(layoutChar(b[row][col]))
		}
		rows[row] = sb.String()
	}
	return rows
}

// String renders the board with row and column indices
func (b Board) String() string {
	var sb strings.Builder
	sb.WriteString("  01234567\n")
	for row, line := range b.Rows() {
		fmt.Fprintf(&sb, "%d %s\n", row, line)
	}
	return sb.String()
}

func layoutChar(p *Piece) byte {
	switch {
	case p == nil:
		return LayoutEmpty
	case p.Color == Red && p.King:
		return LayoutRedKing
	case p.Color == Red:
		return LayoutRed
	case p.King:
		return LayoutBlackKing
	default:
		return LayoutBlack
	}
}
