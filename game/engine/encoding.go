package engine

import "fmt"

// Legacy cell codes used by stored documents of the earlier service:
// lowercase for men, uppercase for kings, empty string for an empty square.
const (
	legacyRed       = "r"
	legacyRedKing   = "R"
	legacyBlack     = "b"
	legacyBlackKing = "B"
)

// DecodeLegacyBoard converts the earlier string-code board into a Board
func DecodeLegacyBoard(rows [][]string) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("legacy board must have %d rows, got %d", Size, len(rows))
	}
	for row, cells := range rows {
		if len(cells) != Size {
			return b, fmt.Errorf("legacy board row %d must have %d cells, got %d", row, Size, len(cells))
		}
		for col, code := range cells {
			switch code {
			case "":
			case legacyRed:
				b[row][col] = &Piece{Color: Red}
			case legacyRedKing:
				b[row][col] = &Piece{Color: Red, King: true}
			case legacyBlack:
				b[row][col] = &Piece{Color: Black}
			case legacyBlackKing:
				b[row][col] = &Piece{Color: Black, King: true}
			default:
				return b, fmt.Errorf("invalid legacy cell %q at (%d,%d)", code, row, col)
			}
		}
	}
	return b, b.Validate()
}

// EncodeLegacyBoard is the inverse of DecodeLegacyBoard
func EncodeLegacyBoard(b Board) [][]string {
	rows := make([][]string, Size)
	for row := 0; row < Size; row++ {
		rows[row] = make([]string, Size)
		for col := 0; col < Size; col++ {
			p := b[row][col]
			switch {
			case p == nil:
			case p.Color == Red && p.King:
				rows[row][col] = legacyRedKing
			case p.Color == Red:
				rows[row][col] = legacyRed
			case p.King:
				rows[row][col] = legacyBlackKing
			default:
				rows[row][col] = legacyBlack
			}
		}
	}
	return rows
}
