package hub

import (
	"context"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hub")

const (
	sendBufferSize    = 16
	heartbeatInterval = 10 * time.Second
)

// MessageHandler processes one raw message read from a client.
type MessageHandler func(ctx context.Context, c *Client, message []byte)

type delivery struct {
	client *Client
	data   []byte
}

// Hub manages the connected websocket clients of the session and fans out
// server messages to them. All client send channels are owned by Run.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan delivery
	handler    MessageHandler
	heartbeat  time.Duration
	done       chan struct{}
}

// NewHub creates a new hub. handler is called from each client's read
// goroutine.
func NewHub(handler MessageHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		direct:     make(chan delivery, 64),
		handler:    handler,
		heartbeat:  heartbeatInterval,
		done:       make(chan struct{}),
	}
}

// Run starts the hub and blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Hub stopping", "clients.count", h.Count())
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			slog.Info("Client connected", "client.id", c.ID)

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			slog.Info("Client disconnected", "client.id", c.ID)

		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				h.deliverLocked(c, data)
			}
			h.mu.Unlock()

		case d := <-h.direct:
			h.mu.Lock()
			if h.clients[d.client] {
				h.deliverLocked(d.client, d.data)
			}
			h.mu.Unlock()
		}
	}
}

// deliverLocked drops clients that cannot keep up.
func (h *Hub) deliverLocked(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("Client send buffer full, dropping client", "client.id", c.ID)
		delete(h.clients, c)
		close(c.send)
	}
}

// Register adds conn as a new client and starts its read and write pumps.
func (h *Hub) Register(ctx context.Context, conn Connection) *Client {
	c := &Client{
		ID:   uuid.New().String(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return c
	}

	go c.writePump()
	go c.readPump(ctx)
	return c
}

// Broadcast sends message to every connected client. It does not block on
// slow clients, so it is safe to call from a session listener.
func (h *Hub) Broadcast(message *proto.ServerToClientMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.Error("error marshalling message", "message.type", message.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// Send sends message to a single client.
func (h *Hub) Send(c *Client, message *proto.ServerToClientMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.Error("error marshalling message", "message.type", message.Type, "error", err)
		return
	}
	select {
	case h.direct <- delivery{client: c, data: data}:
	case <-h.done:
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
