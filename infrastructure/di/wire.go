//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/shijuleon/allot/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideTableOptions,
	ProvideClusterRepository,
	ProvideClusterRepositoryPort,
	ProvideEventPublisher,
	ProvideMetrics,
	ProvideTracer,
	ProvideClusterLoader,
	ProvideCapacityValidator,
	ProvideIngestService,
	ProvideClusterQueryService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
