package server

import (
	"context"
	"ctchen222/tictactoe/internal/api/controller"
	"ctchen222/tictactoe/internal/hub"
	"ctchen222/tictactoe/internal/session"
	"ctchen222/tictactoe/pkg/proto"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	engine   *gin.Engine
	hub      *hub.Hub
	session  *session.Session
	upgrader websocket.Upgrader

	sessionController *controller.SessionController
	engineController  *controller.EngineController
}

// NewServer wires the HTTP routes and the websocket hub to sess. chooser
// serves the stateless engine endpoints.
func NewServer(sess *session.Session, chooser session.MoveChooser) *Server {
	s := &Server{
		session: sess,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sessionController: controller.NewSessionController(sess),
		engineController:  controller.NewEngineController(chooser),
	}
	s.hub = hub.NewHub(s.handleMessage)
	sess.Subscribe(func(st session.State) {
		s.hub.Broadcast(proto.StateMessage(st))
	})
	s.registerHandlers()
	return s
}

// Engine returns the gin engine serving every route.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run runs the websocket hub until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

func (s *Server) registerHandlers() {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	{
		api.GET("/session", s.sessionController.State)
		api.POST("/session/move", s.sessionController.Move)
		api.POST("/session/new", s.sessionController.NewGame)
		api.POST("/session/reset-scores", s.sessionController.ResetScores)
		api.PUT("/session/settings", s.sessionController.Settings)

		api.POST("/evaluate", s.engineController.Evaluate)
		api.POST("/move", s.engineController.ChooseMove)
	}
	r.GET("/ws", s.handleWebSocket)

	s.engine = r
}

// requestLogger logs one line per request through slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "http request",
			"http.method", c.Request.Method,
			"http.path", c.FullPath(),
			"http.status", c.Writer.Status(),
			"http.duration", time.Since(start),
		)
	}
}

// handleWebSocket upgrades the connection, registers it with the hub and
// sends the current session state.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	// The request context ends with the handler; the client outlives it.
	client := s.hub.Register(context.WithoutCancel(ctx), conn)
	span.SetAttributes(attribute.String("client.id", client.ID))
	s.hub.Send(client, proto.StateMessage(s.session.State()))
}
