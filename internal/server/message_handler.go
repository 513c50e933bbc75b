package server

import (
	"context"
	"ctchen222/tictactoe/internal/api/controller"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/hub"
	"ctchen222/tictactoe/internal/validator"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var errMissingIndex = errors.New("move requires an index or a position")

// handleMessage handles a message from a websocket client. State changes
// reach every client through the session subscription; errors go back to
// the sender only.
func (s *Server) handleMessage(ctx context.Context, c *hub.Client, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "server.handleMessage", trace.WithAttributes(
		attribute.String("client.id", c.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		s.hub.Send(c, proto.ErrorMessage(err.Error()))
		return
	}

	if err := validator.Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from client", "client.id", c.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		s.hub.Send(c, proto.ErrorMessage(err.Error()))
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	if err := s.dispatch(ctx, &message); err != nil {
		slog.WarnContext(ctx, "client message rejected", "client.id", c.ID, "message.type", message.Type, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Message rejected")
		s.hub.Send(c, proto.ErrorMessage(err.Error()))
	}
}

func (s *Server) dispatch(ctx context.Context, message *proto.ClientToServerMessage) error {
	switch message.Type {
	case proto.TypeMove:
		idx, err := moveIndex(message)
		if err != nil {
			return err
		}
		_, err = s.session.Play(ctx, idx)
		return err
	case proto.TypeNewGame:
		s.session.NewGame(ctx)
	case proto.TypeResetScores:
		s.session.ResetScores(ctx)
	case proto.TypeSettings:
		mode, difficulty, err := controller.ParseSettings(message.Mode, message.Difficulty)
		if err != nil {
			return err
		}
		s.session.Configure(ctx, mode, difficulty)
	}
	return nil
}

func moveIndex(message *proto.ClientToServerMessage) (int, error) {
	switch {
	case message.Index != nil:
		return *message.Index, nil
	case len(message.Position) == 2:
		idx := game.Index(message.Position[0], message.Position[1])
		if idx < 0 {
			return -1, game.ErrOutOfBounds
		}
		return idx, nil
	default:
		return -1, errMissingIndex
	}
}
