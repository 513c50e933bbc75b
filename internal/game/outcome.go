package game

// Status is the state of a game derived from its board.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWin        Status = "win"
	StatusDraw       Status = "draw"
)

// Outcome is the result of evaluating a board. Winner and Line are only set
// when Status is StatusWin.
type Outcome struct {
	Status Status     `json:"status"`
	Winner PlayerMark `json:"winner,omitempty"`
	Line   *Line      `json:"line,omitempty"`
}

// IsTerminal reports whether the game is over.
func (o Outcome) IsTerminal() bool {
	return o.Status != StatusInProgress
}

// Evaluate scans the win table and reports a win, a draw or a game still in
// progress. The first complete line in table order is returned.
func Evaluate(b Board) (Outcome, error) {
	for _, c := range b {
		if !c.Valid() {
			return Outcome{}, ErrInvalidBoard
		}
	}

	var win *Outcome
	for _, line := range Lines {
		mark := b[line[0]]
		if mark == None || mark != b[line[1]] || mark != b[line[2]] {
			continue
		}
		if win == nil {
			l := line
			win = &Outcome{Status: StatusWin, Winner: mark, Line: &l}
			continue
		}
		if win.Winner != mark {
			return Outcome{}, ErrInvalidBoard
		}
	}
	if win != nil {
		return *win, nil
	}

	for _, c := range b {
		if c == None {
			return Outcome{Status: StatusInProgress}, nil
		}
	}
	return Outcome{Status: StatusDraw}, nil
}
