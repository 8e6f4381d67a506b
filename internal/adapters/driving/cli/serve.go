package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/askdocs/ragserver/internal/adapters/driving/httpapi"
	"github.com/askdocs/ragserver/internal/logger"
)

// shutdownTimeout bounds the drain of in-flight requests.
const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the question-answering HTTP API.

If a local index snapshot exists at the configured path it is loaded
before serving, so a restart does not require re-ingestion.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := app()
	if err != nil {
		return err
	}
	if a.Close != nil {
		defer a.Close()
	}

	if a.SnapshotPath != "" {
		if _, err := os.Stat(a.SnapshotPath); err == nil {
			if err := a.Index.Load(cmd.Context(), a.SnapshotPath); err != nil {
				logger.Warn("Local snapshot not loaded: %v", err)
			}
		}
	}

	server := httpapi.NewServer(a.Listen, a.Query, a.Ingest, a.Index)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
