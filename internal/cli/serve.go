package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/chatlist/internal/config"
	httpAdapter "github.com/aretw0/chatlist/pkg/adapters/http"
	"github.com/aretw0/chatlist/pkg/listsync"
	"github.com/aretw0/chatlist/pkg/observability"
)

// shutdownTimeout bounds how long in-flight requests may take once a stop is requested.
const shutdownTimeout = 5 * time.Second

// NewServeHandler builds the HTTP API, with metrics, on the store selected by cfg.
func NewServeHandler(cfg config.Config, logger *slog.Logger) (http.Handler, func() error, error) {
	metrics := observability.NewMetrics()
	mgr, closeStore, err := createManager(cfg, logger, listsync.WithLifecycleHooks(metrics.Hooks()))
	if err != nil {
		return nil, nil, err
	}
	handler := httpAdapter.NewHandler(mgr,
		httpAdapter.WithMetrics(metrics.Handler()),
		httpAdapter.WithLogger(logger),
	)
	return handler, closeStore, nil
}

// RunServe serves the HTTP API until ctx is cancelled, then shuts down gracefully.
func RunServe(ctx context.Context, cfg config.Config, w io.Writer, logger *slog.Logger) error {
	handler, closeStore, err := NewServeHandler(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	printSystemMessage(w, "Starting chatlist server on %s (store: %s)", srv.Addr, cfg.Store)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		printSystemMessage(w, "Start shutdown...")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(w, "chatlist server stopped gracefully")
		return nil
	}
}
