// Package main creates the cluster table. Failures, including an existing
// table, are logged and the process still exits successfully.
package main

import (
	"context"
	"log"

	"github.com/shijuleon/allot/infrastructure/config"
	"github.com/shijuleon/allot/infrastructure/di"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer func() { _ = container.Logger.Sync() }()

	_ = container.Repository.CreateTableIfMissing(ctx)
}
