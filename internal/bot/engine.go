package bot

import (
	"context"
	"ctchen222/tictactoe/internal/game"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("bot")
	meter  = otel.Meter("bot")
)

var (
	ErrNoLegalMove       = errors.New("no legal move")
	ErrInvalidMover      = errors.New("mover must be X or O")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// Difficulty selects the policy used to choose the computer's move.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty converts a client string into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

// Engine chooses moves for a computer-controlled player. It holds no board
// state; every call is a function of its arguments and the random source.
type Engine struct {
	src    RandomSource
	logger *slog.Logger

	moves metric.Int64Counter
	nodes metric.Int64Histogram
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandomSource makes the Easy and Medium policies draw from src.
func WithRandomSource(src RandomSource) Option {
	return func(e *Engine) { e.src = src }
}

// WithLogger sets the logger used for per-move debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine. Without options it uses unseeded randomness
// and the default slog logger.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{src: DefaultSource()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	var err error
	if e.moves, err = meter.Int64Counter("bot.moves",
		metric.WithDescription("Moves chosen by the decision engine")); err != nil {
		e.logger.Warn("failed to create bot.moves counter", "error", err)
	}
	if e.nodes, err = meter.Int64Histogram("bot.search.nodes",
		metric.WithDescription("Positions visited by a hard search")); err != nil {
		e.logger.Warn("failed to create bot.search.nodes histogram", "error", err)
	}
	return e
}

// ChooseMove returns the cell index the mover should play under difficulty.
// It fails with ErrNoLegalMove on a full or finished board and with
// game.ErrInvalidBoard on a board that cannot occur in play.
func (e *Engine) ChooseMove(ctx context.Context, board game.Board, mover game.PlayerMark, difficulty Difficulty) (int, error) {
	ctx, span := tracer.Start(ctx, "bot.ChooseMove", trace.WithAttributes(
		attribute.String("bot.difficulty", string(difficulty)),
		attribute.String("bot.mover", string(mover)),
	))
	defer span.End()

	idx, br, nodes, err := e.choose(board, mover, difficulty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to choose move")
		return -1, err
	}

	span.SetAttributes(
		attribute.Int("move.index", idx),
		attribute.String("bot.branch", string(br)),
	)
	attrs := metric.WithAttributes(
		attribute.String("bot.difficulty", string(difficulty)),
		attribute.String("bot.branch", string(br)),
	)
	if e.moves != nil {
		e.moves.Add(ctx, 1, attrs)
	}
	if br == branchSearch {
		span.SetAttributes(attribute.Int("bot.search.nodes", nodes))
		if e.nodes != nil {
			e.nodes.Record(ctx, int64(nodes))
		}
	}

	e.logger.DebugContext(ctx, "bot chose move",
		"bot.mover", mover,
		"bot.difficulty", difficulty,
		"bot.branch", br,
		"move.index", idx,
	)
	return idx, nil
}

func (e *Engine) choose(board game.Board, mover game.PlayerMark, difficulty Difficulty) (int, branch, int, error) {
	switch difficulty {
	case Easy, Medium, Hard:
	default:
		return -1, "", 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}
	if err := checkPlayable(board, mover); err != nil {
		return -1, "", 0, err
	}

	switch difficulty {
	case Easy:
		return easyMove(board, e.src), branchRandom, 0, nil
	case Medium:
		idx, br := mediumMove(board, mover, e.src)
		return idx, br, 0, nil
	default:
		res, err := Search(board, mover)
		if err != nil {
			return -1, "", 0, err
		}
		return res.Index, branchSearch, res.Nodes, nil
	}
}
