// =============================================================================
// BRO.AI - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which runs the in-memory mock
// backend over HTTP with the same routes as the BRO.AI API. Point another
// broai instance (or the web app) at it with api_url and use_mocks: false.
//
// COMMAND USAGE:
//   broai serve [--addr :8080]
//
// ROUTES:
//   GET  /health, /metrics, /kpis, /suggestions
//   POST /imports, /imports/{id}/preview, /imports/{id}/confirm
//   GET/POST /recipes, GET/PUT/DELETE /recipes/{id}
//
// The server stops gracefully on SIGINT or SIGTERM.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/broai/internal/mockapi"
)

// shutdownTimeout bounds how long in-flight requests may take to finish.
const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mock BRO.AI API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	store := mockapi.NewStore(
		mockapi.WithLatency(cfg.MockLatency),
		mockapi.WithLogger(logger),
	)
	srv := mockapi.NewServer(store, logger)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mock API stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down the mock API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down mock API: %w", err)
	}
	return <-errCh
}
