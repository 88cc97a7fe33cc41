package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scholium/arxsearch/internal/metrics"
	"github.com/scholium/arxsearch/internal/retrieval"
	"github.com/scholium/arxsearch/internal/server"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API over HTTP",
	Long: `Start the HTTP API serving semantic search against the current corpus
and index. Queries run concurrently against an immutable index
generation; rebuild with the CLI and restart (or re-ingest) to pick up
a new corpus.

Endpoints: GET /api/search, GET /api/articles/{id}, GET /healthz, GET /metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	provider := buildProvider()
	handle := mustLoadIndex()

	db := mustOpenDatabase()
	defer db.Close()

	if store := handle.Current(); store != nil {
		metrics.IndexSize.Set(float64(store.Size()))
	}

	engine := retrieval.NewEngine(provider, handle, db, logger, cfg.Retrieval.Overfetch)
	srv := server.New(engine, db, handle, logger, cfg.HTTP)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			exitWithError(ExitError, "http server: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		if err := srv.Shutdown(context.Background()); err != nil {
			exitWithError(ExitError, "shutdown: %v", err)
		}
	}

	return nil
}
