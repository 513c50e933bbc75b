package response

import (
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(success bool, code int, message string) Error {
	return Error{
		Success: success,
		Code:    code,
		Extras:  message,
	}
}

// StatusFor maps a domain error to an HTTP status code.
func StatusFor(err error) int {
	var respErr Error
	switch {
	case errors.As(err, &respErr):
		return respErr.Code
	case errors.Is(err, game.ErrInvalidBoard),
		errors.Is(err, game.ErrOutOfBounds),
		errors.Is(err, bot.ErrInvalidMover),
		errors.Is(err, bot.ErrUnknownDifficulty),
		errors.Is(err, session.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, bot.ErrNoLegalMove),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrCellOccupied),
		errors.Is(err, session.ErrNotYourTurn):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// DomainErrorResponse writes err with the status StatusFor picks.
func DomainErrorResponse(c *gin.Context, err error) {
	ErrorResponse(c, StatusFor(err), err.Error())
}
