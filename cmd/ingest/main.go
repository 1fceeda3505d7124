// Package main loads cluster description files and writes each one into the
// cluster table.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shijuleon/allot/infrastructure/config"
	"github.com/shijuleon/allot/infrastructure/di"
	appErrors "github.com/shijuleon/allot/pkg/errors"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger
	defer func() { _ = logger.Sync() }()

	if len(cfg.ClusterFiles) == 0 {
		logger.Info("No cluster files configured, nothing to do")
		return
	}

	if cfg.CreateTable {
		_ = container.Repository.CreateTableIfMissing(ctx)
	}

	results, err := container.IngestService.IngestAll(ctx, cfg.ClusterFiles)
	if err != nil {
		logger.Error("Ingest aborted", zap.String("reason", abortReason(err)), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	for _, r := range results {
		logger.Info("Ingested cluster",
			zap.String("clusterID", r.ClusterID),
			zap.String("version", r.Version),
			zap.Int("capacityViolations", len(r.Violations)),
		)
	}
}

func abortReason(err error) string {
	switch {
	case appErrors.IsIOError(err):
		return "unreadable cluster file"
	case appErrors.IsParseError(err):
		return "invalid cluster record"
	case appErrors.IsConflict(err):
		return "concurrent modification"
	case appErrors.IsStoreError(err):
		return "store request failed"
	default:
		return "unexpected error"
	}
}
