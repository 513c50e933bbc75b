package main

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/logger"
	"ctchen222/tictactoe/internal/server"
	"ctchen222/tictactoe/internal/session"
	"ctchen222/tictactoe/internal/telemetry"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid log level: %v", err)
	}
	logger.Init(os.Stdout, level, cfg.OtelEnabled)

	mode, err := session.ParseMode(cfg.Mode)
	if err != nil {
		log.Fatalf("invalid mode: %v", err)
	}
	difficulty, err := bot.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		log.Fatalf("invalid difficulty: %v", err)
	}

	// A seeded source is not safe for concurrent use, so only the session's
	// engine gets it. The session serializes every call into its engine.
	src := bot.DefaultSource()
	if cfg.Seed != 0 {
		src = bot.NewSeededSource(cfg.Seed)
	}
	sess := session.New(bot.NewEngine(bot.WithRandomSource(src)), session.Options{
		Mode:          mode,
		Difficulty:    difficulty,
		AIDelayMin:    cfg.AIDelayMin,
		AIDelayJitter: cfg.AIDelayJitter,
		Random:        src,
	})
	defer sess.Close()

	srv := server.NewServer(sess, bot.NewEngine())

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go srv.Run(hubCtx)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "http.addr", cfg.Addr, "session.id", sess.ID(), "game.mode", mode, "game.difficulty", difficulty)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
