package game

// Border
const (
	BorderMin = 0 // First row/column of the board
	BorderMax = 2 // Last row/column of the board
)

// Index converts a row and column to a board index, or -1 when out of range.
func Index(row, col int) int {
	if row < BorderMin || row > BorderMax || col < BorderMin || col > BorderMax {
		return -1
	}
	return row*3 + col
}

// RowCol converts a board index back to its row and column.
func RowCol(idx int) (row, col int) {
	return idx / 3, idx % 3
}
