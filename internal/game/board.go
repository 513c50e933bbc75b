package game

import (
	"errors"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// BoardSize is the number of cells on the board.
	BoardSize = 9
)

// ErrInvalidBoard is returned for boards that cannot occur in a legal game:
// wrong cell count, unknown marks or two winners.
var ErrInvalidBoard = errors.New("invalid board")

// Opponent returns the other player. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

// IsPlayer reports whether m is X or O.
func (m PlayerMark) IsPlayer() bool {
	return m == PlayerX || m == PlayerO
}

// Valid reports whether m is one of the three cell states.
func (m PlayerMark) Valid() bool {
	return m == None || m.IsPlayer()
}

// Line is one of the index-triples that make up a win condition.
type Line [3]int

// Lines is the fixed win table: rows, then columns, then diagonals.
var Lines = [8]Line{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is a 3x3 board stored row-major: index = row*3 + col.
type Board [BoardSize]PlayerMark

// NewBoard builds a Board from a slice, as received from a client.
func NewBoard(cells []PlayerMark) (Board, error) {
	var b Board
	if len(cells) != BoardSize {
		return b, ErrInvalidBoard
	}
	for i, c := range cells {
		if !c.Valid() {
			return b, ErrInvalidBoard
		}
		b[i] = c
	}
	return b, nil
}

// EmptyCells returns the indices of all empty cells in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, c := range b {
		if c == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// CountMarks returns the number of non-empty cells.
func (b Board) CountMarks() int {
	n := 0
	for _, c := range b {
		if c != None {
			n++
		}
	}
	return n
}

// Place returns a copy of the board with mark placed at idx.
func (b Board) Place(idx int, mark PlayerMark) (Board, error) {
	if idx < 0 || idx >= BoardSize {
		return b, ErrOutOfBounds
	}
	if b[idx] != None {
		return b, ErrCellOccupied
	}
	b[idx] = mark
	return b, nil
}

// Slice converts the board to a dynamic slice for JSON clients.
func (b Board) Slice() []PlayerMark {
	out := make([]PlayerMark, BoardSize)
	copy(out, b[:])
	return out
}

// String renders the board as three rows, with '.' for empty cells.
func (b Board) String() string {
	var sb strings.Builder
	for i, c := range b {
		if c == None {
			sb.WriteByte('.')
		} else {
			sb.WriteString(string(c))
		}
		if i%3 == 2 && i != BoardSize-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
