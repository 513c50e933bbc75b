package bot

import (
	"ctchen222/tictactoe/internal/game"
	"fmt"
	"math"
)

// Terminal scores from the mover's point of view. There is no depth decay,
// so a slow win scores the same as a fast one.
const (
	winScore  = 10
	lossScore = -10
	drawScore = 0
)

// mediumRandomRate is the chance that Medium skips the heuristic entirely.
const mediumRandomRate = 0.4

// branch names the policy path that produced a move, for logs and metrics.
type branch string

const (
	branchRandom   branch = "random"
	branchWin      branch = "win"
	branchBlock    branch = "block"
	branchFallback branch = "fallback"
	branchSearch   branch = "search"
)

// SearchResult is the outcome of a full minimax search.
type SearchResult struct {
	Index int // chosen cell
	Score int // +10 forced win, -10 forced loss, 0 draw with best play
	Nodes int // positions visited
}

// easyMove makes a completely random move.
func easyMove(board game.Board, src RandomSource) int {
	return pick(src, board.EmptyCells())
}

// mediumMove rolls for pure randomness first; otherwise it wins if it can,
// blocks if it must, and moves randomly as a last resort.
func mediumMove(board game.Board, mover game.PlayerMark, src RandomSource) (int, branch) {
	empty := board.EmptyCells()
	if src.Float64() < mediumRandomRate {
		return pick(src, empty), branchRandom
	}
	if idx, ok := FindWinningMove(board, mover); ok {
		return idx, branchWin
	}
	if idx, ok := FindWinningMove(board, mover.Opponent()); ok {
		return idx, branchBlock
	}
	return pick(src, empty), branchFallback
}

// FindWinningMove returns the empty cell of the first line, in table order,
// holding two of mark's pieces and one empty cell.
func FindWinningMove(board game.Board, mark game.PlayerMark) (idx int, found bool) {
	for _, line := range game.Lines {
		count, empty := 0, -1
		for _, i := range line {
			switch board[i] {
			case mark:
				count++
			case game.None:
				empty = i
			}
		}
		if count == 2 && empty != -1 {
			return empty, true
		}
	}
	return -1, false
}

// Search runs a full-depth minimax with alpha-beta pruning for mover.
func Search(board game.Board, mover game.PlayerMark) (SearchResult, error) {
	if err := checkPlayable(board, mover); err != nil {
		return SearchResult{}, err
	}
	s := &searcher{mover: mover}
	score, idx := s.minimax(board, mover, math.MinInt, math.MaxInt)
	return SearchResult{Index: idx, Score: score, Nodes: s.nodes}, nil
}

type searcher struct {
	mover game.PlayerMark
	nodes int
}

func (s *searcher) minimax(board game.Board, turn game.PlayerMark, alpha, beta int) (score, index int) {
	s.nodes++

	// Children of a valid in-progress board are always valid, so the error
	// is unreachable here.
	outcome, _ := game.Evaluate(board)
	switch {
	case outcome.Status == game.StatusDraw:
		return drawScore, -1
	case outcome.Status == game.StatusWin && outcome.Winner == s.mover:
		return winScore, -1
	case outcome.Status == game.StatusWin:
		return lossScore, -1
	}

	empty := board.EmptyCells()
	maximizing := turn == s.mover
	bestScore, bestIdx := math.MaxInt, empty[0]
	if maximizing {
		bestScore = math.MinInt
	}

	for _, idx := range empty {
		child := board
		child[idx] = turn
		childScore, _ := s.minimax(child, turn.Opponent(), alpha, beta)

		if maximizing {
			if childScore > bestScore {
				bestScore, bestIdx = childScore, idx
			}
			alpha = max(alpha, childScore)
		} else {
			if childScore < bestScore {
				bestScore, bestIdx = childScore, idx
			}
			beta = min(beta, childScore)
		}
		if beta <= alpha {
			break
		}
	}
	return bestScore, bestIdx
}

// checkPlayable verifies the preconditions shared by every policy.
func checkPlayable(board game.Board, mover game.PlayerMark) error {
	if !mover.IsPlayer() {
		return fmt.Errorf("%w: %q", ErrInvalidMover, mover)
	}
	outcome, err := game.Evaluate(board)
	if err != nil {
		return err
	}
	if outcome.IsTerminal() {
		return fmt.Errorf("%w: game is %s", ErrNoLegalMove, outcome.Status)
	}
	return nil
}
