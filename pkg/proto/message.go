package proto

import "ctchen222/tictactoe/internal/session"

// Client message types.
const (
	TypeMove        = "move"
	TypeNewGame     = "new_game"
	TypeResetScores = "reset_scores"
	TypeSettings    = "settings"
)

// Server message types.
const (
	TypeState = "state"
	TypeError = "error"
)

// ClientToServerMessage represents a message from the client to the server.
// A move names its cell either by Index or by a [row, col] Position.
type ClientToServerMessage struct {
	Type       string `json:"type" validate:"required,oneof=move new_game reset_scores settings"`
	Index      *int   `json:"index,omitempty" validate:"omitempty,gte=0,lte=8"`
	Position   []int  `json:"position,omitempty" validate:"omitempty,len=2"`
	Mode       string `json:"mode,omitempty" validate:"omitempty,oneof=2p ai"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type   string         `json:"type" validate:"required"`
	Reason string         `json:"reason,omitempty"`
	State  *session.State `json:"state,omitempty"`
}

// StateMessage wraps a session snapshot.
func StateMessage(st session.State) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeState, State: &st}
}

// ErrorMessage reports a rejected client message.
func ErrorMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}
