package bot

import (
	"ctchen222/tictactoe/internal/bot/mocks"
	"ctchen222/tictactoe/internal/game"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
)

const (
	x = game.PlayerX
	o = game.PlayerO
	e = game.None
)

func TestFindWinningMove(t *testing.T) {
	tests := []struct {
		name      string
		board     game.Board
		mark      game.PlayerMark
		wantIdx   int
		wantFound bool
	}{
		{
			name:    "No winning move - empty board",
			board:   game.Board{},
			mark:    x,
			wantIdx: -1, wantFound: false,
		},
		{
			name: "X can win - first row",
			board: game.Board{
				x, x, e,
				o, o, e,
				e, e, e,
			},
			mark:    x,
			wantIdx: 2, wantFound: true,
		},
		{
			name: "O can win - second column",
			board: game.Board{
				x, o, e,
				x, o, e,
				e, e, e,
			},
			mark:    o,
			wantIdx: 7, wantFound: true,
		},
		{
			name: "X can win - gap in main diagonal",
			board: game.Board{
				x, e, e,
				e, e, e,
				e, e, x,
			},
			mark:    x,
			wantIdx: 4, wantFound: true,
		},
		{
			name: "O can win - anti-diagonal",
			board: game.Board{
				e, e, o,
				e, o, e,
				e, e, e,
			},
			mark:    o,
			wantIdx: 6, wantFound: true,
		},
		{
			name: "First line in table order wins",
			board: game.Board{
				x, e, e,
				x, x, e,
				e, e, e,
			},
			mark: x,
			// row {3,4,5} comes before column {0,3,6}
			wantIdx: 5, wantFound: true,
		},
		{
			name: "Blocked line is not a winning move",
			board: game.Board{
				x, x, o,
				e, o, e,
				e, e, e,
			},
			mark:    x,
			wantIdx: -1, wantFound: false,
		},
		{
			name: "Full board, no win possible",
			board: game.Board{
				x, o, x,
				o, x, o,
				o, x, o,
			},
			mark:    x,
			wantIdx: -1, wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, found := FindWinningMove(tt.board, tt.mark)
			if found != tt.wantFound || idx != tt.wantIdx {
				t.Errorf("FindWinningMove() got (%d, %v), want (%d, %v)", idx, found, tt.wantIdx, tt.wantFound)
			}
		})
	}
}

func TestEasyMove(t *testing.T) {
	t.Run("Only one spot left", func(t *testing.T) {
		board := game.Board{
			x, o, x,
			o, x, o,
			o, e, o,
		}
		if idx := easyMove(board, NewSeededSource(1)); idx != 7 {
			t.Errorf("easyMove should pick the only available spot 7, got %d", idx)
		}
	})

	t.Run("Multiple spots left - always an empty cell", func(t *testing.T) {
		board := game.Board{
			x, e, e,
			e, o, e,
			e, e, x,
		}
		src := NewSeededSource(7)
		seen := make(map[int]bool)
		for i := 0; i < 200; i++ {
			idx := easyMove(board, src)
			if board[idx] != game.None {
				t.Fatalf("easyMove returned an occupied cell %d", idx)
			}
			seen[idx] = true
		}
		if len(seen) != len(board.EmptyCells()) {
			t.Errorf("easyMove visited %d of %d empty cells in 200 draws", len(seen), len(board.EmptyCells()))
		}
	})

	t.Run("Uses the injected source over ascending empty cells", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		src := mocks.NewMockRandomSource(ctrl)
		board := game.Board{x, e, o, e, e, e, e, e, e}
		src.EXPECT().IntN(7).Return(2)

		if idx := easyMove(board, src); idx != 4 {
			t.Errorf("easyMove() = %d, want 4 (third empty cell)", idx)
		}
	})
}

func TestMediumMove(t *testing.T) {
	tests := []struct {
		name       string
		board      game.Board
		mover      game.PlayerMark
		roll       float64
		pickIdx    int // returned by IntN when a random pick is expected
		wantIdx    int
		wantBranch branch
	}{
		{
			name: "Win is preferred over block",
			board: game.Board{
				o, o, e,
				x, x, e,
				e, e, e,
			},
			mover:      o,
			roll:       0.4,
			wantIdx:    2,
			wantBranch: branchWin,
		},
		{
			name: "Block when the opponent threatens",
			board: game.Board{
				o, o, e,
				x, e, e,
				e, e, e,
			},
			mover:      x,
			roll:       0.99,
			wantIdx:    2,
			wantBranch: branchBlock,
		},
		{
			name: "Random fallback without threats",
			board: game.Board{
				x, e, e,
				e, o, e,
				e, e, e,
			},
			mover:      x,
			roll:       0.75,
			pickIdx:    3,
			wantIdx:    5,
			wantBranch: branchFallback,
		},
		{
			name: "Random roll skips an available win",
			board: game.Board{
				o, o, e,
				x, x, e,
				e, e, e,
			},
			mover:      o,
			roll:       0.39,
			pickIdx:    4,
			wantIdx:    8,
			wantBranch: branchRandom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			src := mocks.NewMockRandomSource(ctrl)
			src.EXPECT().Float64().Return(tt.roll)
			if tt.wantBranch == branchRandom || tt.wantBranch == branchFallback {
				src.EXPECT().IntN(len(tt.board.EmptyCells())).Return(tt.pickIdx)
			}

			idx, br := mediumMove(tt.board, tt.mover, src)
			if idx != tt.wantIdx || br != tt.wantBranch {
				t.Errorf("mediumMove() got (%d, %s), want (%d, %s)", idx, br, tt.wantIdx, tt.wantBranch)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name      string
		board     game.Board
		mover     game.PlayerMark
		wantIdx   int
		wantScore int
	}{
		{
			name: "Takes the winning move",
			board: game.Board{
				o, o, e,
				x, x, e,
				e, e, e,
			},
			mover:     o,
			wantIdx:   2,
			wantScore: winScore,
		},
		{
			name: "Blocks the opponent",
			board: game.Board{
				x, x, e,
				o, e, e,
				e, e, e,
			},
			mover:   o,
			wantIdx: 2,
			// X still forks from here with best play.
			wantScore: lossScore,
		},
		{
			name: "Last cell",
			board: game.Board{
				x, o, x,
				x, o, o,
				o, x, e,
			},
			mover:     x,
			wantIdx:   8,
			wantScore: drawScore,
		},
		{
			name:      "Empty board is a draw with best play",
			board:     game.Board{},
			mover:     x,
			wantIdx:   0,
			wantScore: drawScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Search(tt.board, tt.mover)
			if err != nil {
				t.Fatalf("Search() unexpected error: %v", err)
			}
			if res.Index != tt.wantIdx || res.Score != tt.wantScore {
				t.Errorf("Search() got (%d, %d), want (%d, %d)", res.Index, res.Score, tt.wantIdx, tt.wantScore)
			}
			if res.Nodes < 1 {
				t.Errorf("Search() visited %d nodes", res.Nodes)
			}
		})
	}
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		board   game.Board
		mover   game.PlayerMark
		wantErr error
	}{
		{
			name:    "Full board",
			board:   game.Board{x, o, x, x, o, o, o, x, x},
			mover:   x,
			wantErr: ErrNoLegalMove,
		},
		{
			name:    "Already won",
			board:   game.Board{x, x, x, o, o, e, e, e, e},
			mover:   o,
			wantErr: ErrNoLegalMove,
		},
		{
			name:    "Two winners",
			board:   game.Board{x, x, x, o, o, o, e, e, e},
			mover:   x,
			wantErr: game.ErrInvalidBoard,
		},
		{
			name:    "Mover is not a player",
			board:   game.Board{},
			mover:   game.None,
			wantErr: ErrInvalidMover,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Search(tt.board, tt.mover); !errors.Is(err, tt.wantErr) {
				t.Errorf("Search() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// exactValue is an unpruned, memoized minimax used as a reference.
func exactValue(memo map[game.Board]int, b game.Board, turn, mover game.PlayerMark) int {
	if v, ok := memo[b]; ok {
		return v
	}
	out, _ := game.Evaluate(b)
	var v int
	switch {
	case out.Status == game.StatusDraw:
		v = drawScore
	case out.Status == game.StatusWin && out.Winner == mover:
		v = winScore
	case out.Status == game.StatusWin:
		v = lossScore
	default:
		maximizing := turn == mover
		for i, idx := range b.EmptyCells() {
			child := b
			child[idx] = turn
			cv := exactValue(memo, child, turn.Opponent(), mover)
			if i == 0 || (maximizing && cv > v) || (!maximizing && cv < v) {
				v = cv
			}
		}
	}
	memo[b] = v
	return v
}

func TestSearchMatchesExactMinimax(t *testing.T) {
	memos := map[game.PlayerMark]map[game.Board]int{x: {}, o: {}}
	seen := make(map[game.Board]bool)

	var walk func(b game.Board, turn game.PlayerMark)
	walk = func(b game.Board, turn game.PlayerMark) {
		if seen[b] {
			return
		}
		seen[b] = true
		if out, _ := game.Evaluate(b); out.IsTerminal() {
			return
		}

		res, err := Search(b, turn)
		if err != nil {
			t.Fatalf("Search() error on\n%v\n%v", b, err)
		}
		want := exactValue(memos[turn], b, turn, turn)
		if res.Score != want {
			t.Fatalf("Search() score %d, exact %d on\n%v", res.Score, want, b)
		}
		child := b
		child[res.Index] = turn
		if b[res.Index] != game.None || exactValue(memos[turn], child, turn.Opponent(), turn) != want {
			t.Fatalf("Search() picked non-optimal cell %d on\n%v", res.Index, b)
		}

		for _, idx := range b.EmptyCells() {
			next := b
			next[idx] = turn
			walk(next, turn.Opponent())
		}
	}
	walk(game.Board{}, x)
}

func TestHardNeverLoses(t *testing.T) {
	for _, hard := range []game.PlayerMark{x, o} {
		t.Run("hard plays "+string(hard), func(t *testing.T) {
			games := 0
			var play func(b game.Board, turn game.PlayerMark)
			play = func(b game.Board, turn game.PlayerMark) {
				out, err := game.Evaluate(b)
				if err != nil {
					t.Fatalf("Evaluate() error: %v", err)
				}
				if out.IsTerminal() {
					games++
					if out.Status == game.StatusWin && out.Winner != hard {
						t.Fatalf("hard %s lost:\n%v", hard, b)
					}
					return
				}
				if turn == hard {
					res, err := Search(b, turn)
					if err != nil {
						t.Fatalf("Search() error: %v", err)
					}
					b[res.Index] = turn
					play(b, turn.Opponent())
					return
				}
				for _, idx := range b.EmptyCells() {
					next := b
					next[idx] = turn
					play(next, turn.Opponent())
				}
			}
			play(game.Board{}, x)
			if games == 0 {
				t.Fatal("no games played")
			}
		})
	}
}

func TestHardVersusHardIsADraw(t *testing.T) {
	var b game.Board
	turn := x
	var order []int
	for {
		out, _ := game.Evaluate(b)
		if out.IsTerminal() {
			if out.Status != game.StatusDraw {
				t.Fatalf("hard vs hard ended in %+v after %v", out, order)
			}
			break
		}
		res, err := Search(b, turn)
		if err != nil {
			t.Fatalf("Search() error: %v", err)
		}
		order = append(order, res.Index)
		b[res.Index] = turn
		turn = turn.Opponent()
	}
	if len(order) != game.BoardSize {
		t.Errorf("expected a full board, moves were %v", order)
	}
}
