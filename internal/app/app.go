package app

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/duchoang-vn/chatdesk-server/internal/chat"
	"github.com/duchoang-vn/chatdesk-server/internal/config"
	transporthttp "github.com/duchoang-vn/chatdesk-server/internal/transport/http"
)

// App wires together the chat core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration. All chat state
// is process-memory-resident and lost on restart by design.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	registry := chat.NewRegistry(logger)
	history := chat.NewHistory(cfg.HistoryLimit)
	router := chat.NewRouter(registry, history, logger)
	broker := transporthttp.NewBroker(logger)

	server := transporthttp.NewServer(router, registry, history, broker, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
