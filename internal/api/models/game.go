package models

import (
	"ctchen222/tictactoe/internal/game"
)

// MoveRequest defines the body of a human move in the current session.
type MoveRequest struct {
	Index *int `json:"index" binding:"required"`
}

// SettingsRequest defines a change of mode and/or difficulty. Empty fields
// keep the current value.
type SettingsRequest struct {
	Mode       string `json:"mode" binding:"omitempty,oneof=2p ai"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// EvaluateRequest defines the body of a stateless board evaluation.
type EvaluateRequest struct {
	Board []game.PlayerMark `json:"board" binding:"required"`
}

// ChooseMoveRequest defines the body of a stateless move decision.
type ChooseMoveRequest struct {
	Board      []game.PlayerMark `json:"board" binding:"required"`
	Mover      game.PlayerMark   `json:"mover" binding:"required"`
	Difficulty string            `json:"difficulty" binding:"required"`
}

// ChooseMoveResponse defines the engine's answer.
type ChooseMoveResponse struct {
	Index int `json:"index"`
}
