package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds how long in-flight requests may take to finish.
const shutdownTimeout = 10 * time.Second

// startHTTPServer serves router until ctx ends, the process receives
// SIGINT or SIGTERM, or the listener fails. Application resources are
// released before it returns.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("http server failed", "error", err)
			serveErr <- err
			cancelServer()
		}
	}()

	select {
	case sig := <-shutdownCh:
		app.logger.Info("shutdown requested", "signal", sig.String())
	case <-serverCtx.Done():
		app.logger.Info("server context done, shutting down")
	}

	// ctx may already be done, so the grace period gets a fresh one.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	app.cleanup()

	select {
	case err := <-serveErr:
		return err
	default:
	}
	if shutdownErr != nil {
		app.logger.Error("graceful shutdown failed", "error", shutdownErr)
		return fmt.Errorf("shutdown http server: %w", shutdownErr)
	}

	app.logger.Info("picturebook stopped")
	return nil
}
