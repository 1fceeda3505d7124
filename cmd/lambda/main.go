// Package main implements a Lambda handler whose event is a cluster
// description; the cluster is validated and written like a file ingest.
package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/shijuleon/allot/application/services"
	"github.com/shijuleon/allot/infrastructure/config"
	"github.com/shijuleon/allot/infrastructure/di"
)

var (
	container *di.Container

	coldStart = true
)

// Response is returned to the invoker
type Response struct {
	ClusterID          string `json:"cluster_id"`
	Version            string `json:"version"`
	CapacityViolations int    `json:"capacity_violations"`
}

func init() {
	started := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	log.Printf("Lambda cold start completed in %v", time.Since(started))
}

// Handler ingests one cluster description
func Handler(ctx context.Context, event json.RawMessage) (Response, error) {
	if coldStart {
		coldStart = false
		container.Logger.Info("First invocation after cold start")
	}

	result, err := container.IngestService.IngestDocument(ctx, event)
	if err != nil {
		container.Logger.Error("Cluster ingest failed", zap.Error(err))
		return Response{}, err
	}
	return toResponse(result), nil
}

func toResponse(r *services.IngestResult) Response {
	return Response{
		ClusterID:          r.ClusterID,
		Version:            r.Version,
		CapacityViolations: len(r.Violations),
	}
}

func main() {
	lambda.Start(Handler)
}
