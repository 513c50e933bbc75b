package session

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("session")

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrUnknownMode = errors.New("unknown mode")
)

// Mode selects who plays O.
type Mode string

const (
	ModeTwoPlayer Mode = "2p"
	ModeAI        Mode = "ai"
)

// ComputerMark is the mark played by the computer in ModeAI. X always starts.
const ComputerMark = game.PlayerO

// ParseMode converts a client string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeTwoPlayer, ModeAI:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// MoveChooser picks the computer's move. *bot.Engine implements it.
type MoveChooser interface {
	ChooseMove(ctx context.Context, board game.Board, mover game.PlayerMark, difficulty bot.Difficulty) (int, error)
}

// Scores are kept across games until reset.
type Scores struct {
	X     int `json:"x"`
	O     int `json:"o"`
	Draws int `json:"draws"`
}

// State is a snapshot of the session for clients.
type State struct {
	SessionID   string            `json:"session_id"`
	GameID      string            `json:"game_id"`
	Mode        Mode              `json:"mode"`
	Difficulty  bot.Difficulty    `json:"difficulty"`
	Board       []game.PlayerMark `json:"board"`
	CurrentTurn game.PlayerMark   `json:"current_turn"`
	Moves       int               `json:"moves"`
	Outcome     game.Outcome      `json:"outcome"`
	Scores      Scores            `json:"scores"`
	Thinking    bool              `json:"thinking"`
}

// Options configures a Session.
type Options struct {
	Mode          Mode
	Difficulty    bot.Difficulty
	AIDelayMin    time.Duration
	AIDelayJitter time.Duration
	Random        bot.RandomSource
	Logger        *slog.Logger
}

// Session is the turn controller of a single local session: it owns the
// board, turn order, settings and scores, and drives the computer's turns.
type Session struct {
	mu sync.Mutex

	id         string
	gameID     string
	game       *game.Game
	mode       Mode
	difficulty bot.Difficulty
	scores     Scores
	thinking   bool
	closed     bool

	chooser     MoveChooser
	delayMin    time.Duration
	delayJitter time.Duration
	rnd         bot.RandomSource
	aiTimer     *time.Timer
	logger      *slog.Logger

	listeners    map[int]func(State)
	nextListener int
}

// New creates a session with an empty board.
func New(chooser MoveChooser, opts Options) *Session {
	if opts.Mode == "" {
		opts.Mode = ModeAI
	}
	if opts.Difficulty == "" {
		opts.Difficulty = bot.Hard
	}
	if opts.Random == nil {
		opts.Random = bot.DefaultSource()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Session{
		id:          uuid.New().String(),
		mode:        opts.Mode,
		difficulty:  opts.Difficulty,
		chooser:     chooser,
		delayMin:    opts.AIDelayMin,
		delayJitter: opts.AIDelayJitter,
		rnd:         opts.Random,
		listeners:   make(map[int]func(State)),
	}
	s.logger = opts.Logger.With("session.id", s.id)
	s.resetGameLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// with the session locked, so it must not call back into the session.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Play applies a human move at idx for the player whose turn it is.
func (s *Session) Play(ctx context.Context, idx int) (State, error) {
	ctx, span := tracer.Start(ctx, "session.Play", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.Int("move.index", idx),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeAI && s.game.CurrentTurn == ComputerMark && !s.game.IsOver() {
		span.SetStatus(codes.Error, "Move during computer turn")
		return s.stateLocked(), ErrNotYourTurn
	}

	mark := s.game.CurrentTurn
	if err := s.game.Move(idx); err != nil {
		s.logger.WarnContext(ctx, "invalid move", "move.index", idx, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		return s.stateLocked(), err
	}
	row, col := game.RowCol(idx)
	s.logger.InfoContext(ctx, "move applied", "move.index", idx, "move.row", row, "move.col", col, "move.mark", mark)

	s.afterMoveLocked(ctx)
	return s.notifyLocked(), nil
}

// NewGame clears the board and keeps the scores.
func (s *Session) NewGame(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetGameLocked()
	s.logger.InfoContext(ctx, "new game", "game.id", s.gameID)
	return s.notifyLocked()
}

// ResetScores zeroes the scores and starts a new game.
func (s *Session) ResetScores(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = Scores{}
	s.resetGameLocked()
	s.logger.InfoContext(ctx, "scores reset", "game.id", s.gameID)
	return s.notifyLocked()
}

// Configure changes mode and difficulty and starts a new game. Empty values
// keep the current setting.
func (s *Session) Configure(ctx context.Context, mode Mode, difficulty bot.Difficulty) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode != "" {
		s.mode = mode
	}
	if difficulty != "" {
		s.difficulty = difficulty
	}
	s.resetGameLocked()
	s.logger.InfoContext(ctx, "settings changed", "game.mode", s.mode, "game.difficulty", s.difficulty)
	return s.notifyLocked()
}

// Close cancels a pending computer turn.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimerLocked()
}

func (s *Session) resetGameLocked() {
	s.stopTimerLocked()
	s.game = game.NewGame()
	s.gameID = uuid.New().String()
}

func (s *Session) stopTimerLocked() {
	if s.aiTimer != nil {
		s.aiTimer.Stop()
		s.aiTimer = nil
	}
	s.thinking = false
}

// afterMoveLocked records a finished game or hands the turn to the computer.
func (s *Session) afterMoveLocked(ctx context.Context) {
	if s.game.IsOver() {
		outcome := s.game.Outcome
		switch {
		case outcome.Status == game.StatusDraw:
			s.scores.Draws++
		case outcome.Winner == game.PlayerX:
			s.scores.X++
		case outcome.Winner == game.PlayerO:
			s.scores.O++
		}
		s.logger.InfoContext(ctx, "game finished",
			"game.id", s.gameID,
			"game.status", outcome.Status,
			"game.winner", outcome.Winner,
		)
		return
	}
	if s.mode == ModeAI && s.game.CurrentTurn == ComputerMark {
		s.scheduleComputerLocked()
	}
}

// scheduleComputerLocked plays the computer's move after a thinking delay.
func (s *Session) scheduleComputerLocked() {
	delay := s.delayMin
	if s.delayJitter > 0 {
		delay += time.Duration(s.rnd.IntN(int(s.delayJitter)))
	}
	gameID := s.gameID
	s.thinking = true
	s.aiTimer = time.AfterFunc(delay, func() { s.computerTurn(gameID) })
}

func (s *Session) computerTurn(gameID string) {
	ctx, span := tracer.Start(context.Background(), "session.computerTurn", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.String("game.id", gameID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	// The game was reset, or the session closed while the timer fired.
	if s.closed || s.gameID != gameID || s.game.IsOver() || s.game.CurrentTurn != ComputerMark {
		return
	}
	s.aiTimer = nil
	s.thinking = false

	idx, err := s.chooser.ChooseMove(ctx, s.game.Board, ComputerMark, s.difficulty)
	if err == nil {
		err = s.game.Move(idx)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "computer failed to move", "game.id", gameID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer failed to move")
		s.notifyLocked()
		return
	}
	span.SetAttributes(attribute.Int("move.index", idx))
	s.logger.InfoContext(ctx, "computer moved", "move.index", idx, "game.difficulty", s.difficulty)

	s.afterMoveLocked(ctx)
	s.notifyLocked()
}

func (s *Session) notifyLocked() State {
	st := s.stateLocked()
	for _, fn := range s.listeners {
		fn(st)
	}
	return st
}

func (s *Session) stateLocked() State {
	return State{
		SessionID:   s.id,
		GameID:      s.gameID,
		Mode:        s.mode,
		Difficulty:  s.difficulty,
		Board:       s.game.Board.Slice(),
		CurrentTurn: s.game.CurrentTurn,
		Moves:       s.game.Moves,
		Outcome:     s.game.Outcome,
		Scores:      s.scores,
		Thinking:    s.thinking,
	}
}
