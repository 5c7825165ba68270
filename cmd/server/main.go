package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaychat/relay/internal/api"
	"github.com/relaychat/relay/internal/chat"
	"github.com/relaychat/relay/internal/config"
	"github.com/relaychat/relay/internal/handlers"
	"github.com/relaychat/relay/internal/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	// Wire the gateway and coordinator; the gateway is the coordinator's
	// transport, the coordinator is the gateway's event sink.
	gateway := ws.NewGateway(logger)
	coordinator := chat.New(chat.Config{
		DefaultRooms:  cfg.DefaultRooms,
		AvatarBaseURL: cfg.AvatarBaseURL,
	}, gateway, logger)
	gateway.Attach(coordinator)

	// Create router
	router := api.NewRouter(logger, handlers.NewHandler(coordinator), gateway)

	// Create server. No read/write timeouts: they would sever long-lived
	// WebSocket connections.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Strs("default_rooms", cfg.DefaultRooms).
			Msg("starting Relay server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Stop accepting new connections, then disconnect the open ones.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}
	gateway.Close()

	logger.Info().Msg("server stopped")
}
