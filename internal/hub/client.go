package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Client is one websocket connection watching the session.
type Client struct {
	ID   string
	hub  *Hub
	conn Connection
	send chan []byte
}

// readPump passes every message from the connection to the hub's handler
// until the connection fails.
func (c *Client) readPump(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "hub.readPump", trace.WithAttributes(
		attribute.String("client.id", c.ID),
	))
	defer span.End()

	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Client connection error", "client.id", c.ID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Client connection error")
			}
			return
		}
		if c.hub.handler != nil {
			c.hub.handler(ctx, c, msg)
		}
	}
}

// writePump is the only writer to the connection. It also sends the
// heartbeat pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.heartbeat)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("error writing message to client", "client.id", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Warn("Failed to send ping to client, assuming disconnect", "client.id", c.ID, "error", err)
				return
			}
		}
	}
}
