package controller

import (
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EngineController exposes the evaluator and the decision engine without
// touching any session.
type EngineController struct {
	chooser session.MoveChooser
}

// NewEngineController creates a new EngineController.
func NewEngineController(chooser session.MoveChooser) *EngineController {
	return &EngineController{
		chooser: chooser,
	}
}

// Evaluate reports the outcome of a board.
func (ec *EngineController) Evaluate(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "controller.Evaluate")
	defer span.End()

	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	board, err := game.NewBoard(req.Board)
	if err == nil {
		var outcome game.Outcome
		if outcome, err = game.Evaluate(board); err == nil {
			span.SetAttributes(attribute.String("game.status", string(outcome.Status)))
			response.SuccessResponse(c, outcome)
			return
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "Invalid board")
	response.DomainErrorResponse(c, err)
}

// ChooseMove returns the index the mover should play.
func (ec *EngineController) ChooseMove(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "controller.ChooseMove")
	defer span.End()

	var req models.ChooseMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	difficulty, err := bot.ParseDifficulty(req.Difficulty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid difficulty")
		response.DomainErrorResponse(c, err)
		return
	}
	board, err := game.NewBoard(req.Board)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid board")
		response.DomainErrorResponse(c, err)
		return
	}

	idx, err := ec.chooser.ChooseMove(ctx, board, req.Mover, difficulty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to choose move")
		response.DomainErrorResponse(c, err)
		return
	}

	response.SuccessResponse(c, models.ChooseMoveResponse{Index: idx})
}
