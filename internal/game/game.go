package game

import "errors"

var (
	ErrGameOver     = errors.New("game already finished")
	ErrOutOfBounds  = errors.New("invalid move")
	ErrCellOccupied = errors.New("cell already occupied")
)

// Game is the authoritative board and turn order of one game.
type Game struct {
	Board       Board
	CurrentTurn PlayerMark
	Moves       int
	Outcome     Outcome
}

// NewGame returns an empty game with X to move.
func NewGame() *Game {
	return &Game{
		CurrentTurn: PlayerX,
		Outcome:     Outcome{Status: StatusInProgress},
	}
}

// Move places the current player's mark at idx and passes the turn.
func (g *Game) Move(idx int) error {
	if g.Outcome.IsTerminal() {
		return ErrGameOver
	}

	board, err := g.Board.Place(idx, g.CurrentTurn)
	if err != nil {
		return err
	}
	outcome, err := Evaluate(board)
	if err != nil {
		return err
	}

	g.Board = board
	g.Moves++
	g.Outcome = outcome
	if !outcome.IsTerminal() {
		g.CurrentTurn = g.CurrentTurn.Opponent()
	}
	return nil
}

// IsOver reports whether the game has a winner or is a draw.
func (g *Game) IsOver() bool {
	return g.Outcome.IsTerminal()
}
