package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chatfront/internal/config"
	"chatfront/internal/logger"
	"chatfront/internal/stubserver"
)

func main() {
	messageLimit := flag.Int("message-limit", 20, "messages per user per window; 0 disables the limit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration error: %v", err)
	}

	// The stub has no terminal UI to protect, so it logs to stderr.
	appLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat, "stderr", "chatfront-stub")
	if err != nil {
		log.Fatalf("✗ Logger setup failed: %v", err)
	}
	defer appLogger.Sync()

	stub := stubserver.New(stubserver.Options{
		JWTSecret:    cfg.JWTSecret,
		MessageLimit: *messageLimit,
		Logger:       appLogger,
	})

	server := &http.Server{
		Addr:         cfg.StubAddr,
		Handler:      stub.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		appLogger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	appLogger.Info("stub backend ready",
		zap.String("addr", cfg.StubAddr),
		zap.Bool("bearer_auth", cfg.JWTSecret != ""),
		zap.Int("message_limit", *messageLimit),
	)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		appLogger.Fatal("server error", zap.Error(err))
	}
}
