package session

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chooserFunc func(ctx context.Context, board game.Board, mover game.PlayerMark, difficulty bot.Difficulty) (int, error)

func (f chooserFunc) ChooseMove(ctx context.Context, board game.Board, mover game.PlayerMark, difficulty bot.Difficulty) (int, error) {
	return f(ctx, board, mover, difficulty)
}

func playAll(t *testing.T, s *Session, moves ...int) State {
	t.Helper()
	var st State
	for _, idx := range moves {
		var err error
		st, err = s.Play(context.Background(), idx)
		require.NoError(t, err, "move %d", idx)
	}
	return st
}

func waitForHuman(t *testing.T, s *Session) State {
	t.Helper()
	require.Eventually(t, func() bool {
		st := s.State()
		return !st.Thinking && (st.CurrentTurn == game.PlayerX || st.Outcome.IsTerminal())
	}, 2*time.Second, 5*time.Millisecond)
	return s.State()
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("2p")
	require.NoError(t, err)
	assert.Equal(t, ModeTwoPlayer, m)

	m, err = ParseMode("ai")
	require.NoError(t, err)
	assert.Equal(t, ModeAI, m)

	_, err = ParseMode("online")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestNew_Defaults(t *testing.T) {
	s := New(bot.NewEngine(), Options{})
	st := s.State()

	assert.Equal(t, ModeAI, st.Mode)
	assert.Equal(t, bot.Hard, st.Difficulty)
	assert.Equal(t, game.PlayerX, st.CurrentTurn)
	assert.Len(t, st.Board, game.BoardSize)
	assert.Equal(t, game.StatusInProgress, st.Outcome.Status)
	assert.NotEmpty(t, st.SessionID)
	assert.NotEmpty(t, st.GameID)
	assert.Equal(t, s.ID(), st.SessionID)
}

func TestTwoPlayer_Scores(t *testing.T) {
	s := New(nil, Options{Mode: ModeTwoPlayer})
	ctx := context.Background()

	// X takes the top row.
	st := playAll(t, s, 0, 3, 1, 4, 2)
	assert.Equal(t, game.StatusWin, st.Outcome.Status)
	assert.Equal(t, game.PlayerX, st.Outcome.Winner)
	require.NotNil(t, st.Outcome.Line)
	assert.Equal(t, game.Line{0, 1, 2}, *st.Outcome.Line)
	assert.Equal(t, Scores{X: 1}, st.Scores)

	_, err := s.Play(ctx, 8)
	assert.ErrorIs(t, err, game.ErrGameOver)

	st = s.NewGame(ctx)
	assert.Equal(t, Scores{X: 1}, st.Scores, "new game keeps scores")
	assert.Equal(t, 0, st.Moves)
	assert.Equal(t, game.PlayerX, st.CurrentTurn)

	st = playAll(t, s, 0, 1, 2, 4, 3, 5, 7, 6, 8)
	assert.Equal(t, game.StatusDraw, st.Outcome.Status)
	assert.Equal(t, Scores{X: 1, Draws: 1}, st.Scores)

	st = s.ResetScores(ctx)
	assert.Equal(t, Scores{}, st.Scores)
	assert.Equal(t, 0, st.Moves)
}

func TestTwoPlayer_O_Wins(t *testing.T) {
	s := New(nil, Options{Mode: ModeTwoPlayer})
	st := playAll(t, s, 0, 2, 1, 4, 3, 6)
	assert.Equal(t, game.PlayerO, st.Outcome.Winner)
	assert.Equal(t, Scores{O: 1}, st.Scores)
}

func TestPlay_InvalidMoves(t *testing.T) {
	s := New(nil, Options{Mode: ModeTwoPlayer})
	ctx := context.Background()

	_, err := s.Play(ctx, 9)
	assert.ErrorIs(t, err, game.ErrOutOfBounds)

	_, err = s.Play(ctx, 4)
	require.NoError(t, err)

	st, err := s.Play(ctx, 4)
	assert.ErrorIs(t, err, game.ErrCellOccupied)
	assert.Equal(t, game.PlayerO, st.CurrentTurn, "rejected move keeps the turn")
	assert.Equal(t, 1, st.Moves)
}

func TestAI_HardNeverLoses(t *testing.T) {
	s := New(bot.NewEngine(), Options{Mode: ModeAI, Difficulty: bot.Hard})
	defer s.Close()

	// The human always plays the lowest free cell.
	for range 5 {
		st := waitForHuman(t, s)
		if st.Outcome.IsTerminal() {
			break
		}
		for i, mark := range st.Board {
			if mark == game.None {
				_, err := s.Play(context.Background(), i)
				require.NoError(t, err)
				break
			}
		}
	}

	st := waitForHuman(t, s)
	require.True(t, st.Outcome.IsTerminal())
	assert.NotEqual(t, game.PlayerX, st.Outcome.Winner)
	assert.Equal(t, 0, st.Scores.X)
	assert.Equal(t, 1, st.Scores.O+st.Scores.Draws)
}

func TestAI_ThinkingBlocksHumanUntilNewGame(t *testing.T) {
	var calls atomic.Int32
	chooser := chooserFunc(func(context.Context, game.Board, game.PlayerMark, bot.Difficulty) (int, error) {
		calls.Add(1)
		return 8, nil
	})
	s := New(chooser, Options{Mode: ModeAI, AIDelayMin: time.Hour})
	defer s.Close()
	ctx := context.Background()

	st, err := s.Play(ctx, 0)
	require.NoError(t, err)
	assert.True(t, st.Thinking)
	assert.Equal(t, game.PlayerO, st.CurrentTurn)

	_, err = s.Play(ctx, 1)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	st = s.NewGame(ctx)
	assert.False(t, st.Thinking)
	assert.Equal(t, game.PlayerX, st.CurrentTurn)
	assert.Equal(t, 0, st.Moves)
	assert.Zero(t, calls.Load())
}

func TestAI_ComputerMoveUsesDifficulty(t *testing.T) {
	var got atomic.Value
	chooser := chooserFunc(func(_ context.Context, board game.Board, mover game.PlayerMark, d bot.Difficulty) (int, error) {
		got.Store(d)
		assert.Equal(t, game.PlayerO, mover)
		return board.EmptyCells()[0], nil
	})
	s := New(chooser, Options{Mode: ModeAI, Difficulty: bot.Easy})
	defer s.Close()

	_, err := s.Play(context.Background(), 4)
	require.NoError(t, err)

	st := waitForHuman(t, s)
	assert.Equal(t, game.PlayerO, st.Board[0])
	assert.Equal(t, 2, st.Moves)
	assert.Equal(t, bot.Easy, got.Load())
}

func TestAI_ChooserError(t *testing.T) {
	chooser := chooserFunc(func(context.Context, game.Board, game.PlayerMark, bot.Difficulty) (int, error) {
		return -1, errors.New("boom")
	})
	s := New(chooser, Options{Mode: ModeAI})
	defer s.Close()

	_, err := s.Play(context.Background(), 0)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return !s.State().Thinking }, 2*time.Second, 5*time.Millisecond)
	st := s.State()
	assert.Equal(t, 1, st.Moves)
	assert.Equal(t, game.PlayerO, st.CurrentTurn)

	st = s.NewGame(context.Background())
	assert.Equal(t, 0, st.Moves)
}

func TestConfigure(t *testing.T) {
	s := New(nil, Options{Mode: ModeTwoPlayer, Difficulty: bot.Medium})
	ctx := context.Background()
	playAll(t, s, 0, 3, 1, 4, 2)
	before := s.State().GameID

	st := s.Configure(ctx, ModeAI, "")
	assert.Equal(t, ModeAI, st.Mode)
	assert.Equal(t, bot.Medium, st.Difficulty)
	assert.Equal(t, 0, st.Moves)
	assert.NotEqual(t, before, st.GameID)
	assert.Equal(t, Scores{X: 1}, st.Scores)

	st = s.Configure(ctx, "", bot.Easy)
	assert.Equal(t, ModeAI, st.Mode)
	assert.Equal(t, bot.Easy, st.Difficulty)
}

func TestSubscribe(t *testing.T) {
	s := New(nil, Options{Mode: ModeTwoPlayer})
	ctx := context.Background()

	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })

	playAll(t, s, 4)
	s.NewGame(ctx)
	require.Len(t, seen, 2)
	assert.Equal(t, 1, seen[0].Moves)
	assert.Equal(t, 0, seen[1].Moves)

	unsubscribe()
	playAll(t, s, 0)
	assert.Len(t, seen, 2)

	_, err := s.Play(ctx, 0)
	require.Error(t, err)
	assert.Len(t, seen, 2, "rejected moves are not broadcast")
}
