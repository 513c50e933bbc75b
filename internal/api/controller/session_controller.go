package controller

import (
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("controller")

// SessionController handles requests against the local game session.
type SessionController struct {
	session *session.Session
}

// NewSessionController creates a new SessionController.
func NewSessionController(s *session.Session) *SessionController {
	return &SessionController{
		session: s,
	}
}

// State returns the current session snapshot.
func (sc *SessionController) State(c *gin.Context) {
	response.SuccessResponse(c, sc.session.State())
}

// Move applies a human move.
func (sc *SessionController) Move(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "controller.Move")
	defer span.End()

	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.Int("move.index", *req.Index))

	st, err := sc.session.Play(ctx, *req.Index)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move rejected")
		response.DomainErrorResponse(c, err)
		return
	}

	response.SuccessResponse(c, st)
}

// NewGame clears the board, keeping scores.
func (sc *SessionController) NewGame(c *gin.Context) {
	response.SuccessResponse(c, sc.session.NewGame(c.Request.Context()))
}

// ResetScores zeroes the scores and starts a new game.
func (sc *SessionController) ResetScores(c *gin.Context) {
	response.SuccessResponse(c, sc.session.ResetScores(c.Request.Context()))
}

// Settings changes mode and difficulty.
func (sc *SessionController) Settings(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "controller.Settings")
	defer span.End()

	var req models.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	mode, difficulty, err := ParseSettings(req.Mode, req.Difficulty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid settings")
		response.DomainErrorResponse(c, err)
		return
	}
	span.SetAttributes(
		attribute.String("game.mode", string(mode)),
		attribute.String("game.difficulty", string(difficulty)),
	)

	response.SuccessResponse(c, sc.session.Configure(ctx, mode, difficulty))
}

// ParseSettings validates optional mode and difficulty strings. Empty
// strings stay empty.
func ParseSettings(modeStr, difficultyStr string) (session.Mode, bot.Difficulty, error) {
	var (
		mode       session.Mode
		difficulty bot.Difficulty
		err        error
	)
	if modeStr != "" {
		if mode, err = session.ParseMode(modeStr); err != nil {
			return "", "", err
		}
	}
	if difficultyStr != "" {
		if difficulty, err = bot.ParseDifficulty(difficultyStr); err != nil {
			return "", "", err
		}
	}
	return mode, difficulty, nil
}
