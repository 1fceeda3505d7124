// Package main prints a stored cluster record as JSON.
//
// Usage: get-cluster <cluster_id>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/shijuleon/allot/infrastructure/config"
	"github.com/shijuleon/allot/infrastructure/di"
	appErrors "github.com/shijuleon/allot/pkg/errors"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: get-cluster <cluster_id>")
		os.Exit(2)
	}
	clusterID := os.Args[1]
	ctx := context.Background()

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

	record, err := container.QueryService.GetCluster(ctx, clusterID)
	if err != nil {
		_ = logger.Sync()
		if appErrors.IsNotFound(err) {
			os.Exit(3)
		}
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		logger.Error("Failed to write record", zap.Error(err))
	}
}
