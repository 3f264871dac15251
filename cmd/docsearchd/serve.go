package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpserver "github.com/fyrsmithlabs/docsearchd/internal/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP daemon",
	Long: `Start the docsearchd HTTP server.

The server exposes search and document ingestion endpoints plus health
and Prometheus metrics, and shuts down gracefully on SIGINT or SIGTERM.

Examples:
  # Start with defaults (Qdrant on localhost:6334)
  docsearchd serve

  # Start with a config file
  docsearchd serve --config /etc/docsearchd/config.yaml

  # Local development without Qdrant
  docsearchd serve --memory`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	server, err := httpserver.NewServer(app.engine, app.ingest, app.logger, &httpserver.Config{
		Host:          app.cfg.Server.Host,
		Port:          app.cfg.Server.Port,
		MaxUploadSize: app.cfg.Server.MaxUploadSize,
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info(context.Background(), "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
