package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"github.com/shijuleon/allot/application/loaders"
	"github.com/shijuleon/allot/application/ports"
	"github.com/shijuleon/allot/application/services"
	"github.com/shijuleon/allot/domain/core/validators"
	"github.com/shijuleon/allot/infrastructure/config"
	"github.com/shijuleon/allot/infrastructure/messaging/eventbridge"
	"github.com/shijuleon/allot/infrastructure/persistence/dynamodb"
	"github.com/shijuleon/allot/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zapCfg.Level = level

	return zapCfg.Build(zap.Fields(zap.String("service", cfg.ServiceName)))
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client pointed at the configured endpoint
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return dynamodb.NewClient(awsCfg, cfg.DynamoDBEndpoint)
}

// ProvideTableOptions maps configuration onto the cluster table options
func ProvideTableOptions(cfg *config.Config) dynamodb.TableOptions {
	return dynamodb.TableOptions{
		TableName:          cfg.TableName,
		ReadCapacityUnits:  cfg.ReadCapacityUnits,
		WriteCapacityUnits: cfg.WriteCapacityUnits,
		ReturnValues:       types.ReturnValue(cfg.ReturnValues),
		OptimisticLocking:  cfg.OptimisticLocking,
	}
}

// ProvideClusterRepository creates the DynamoDB-backed cluster repository
func ProvideClusterRepository(client *awsdynamodb.Client, opts dynamodb.TableOptions, logger *zap.Logger) *dynamodb.ClusterRepository {
	return dynamodb.NewClusterRepository(client, opts, logger)
}

// ProvideClusterRepositoryPort exposes the repository through its port
func ProvideClusterRepositoryPort(repo *dynamodb.ClusterRepository) ports.ClusterRepository {
	return repo
}

// ProvideEventPublisher creates an EventBridge publisher, or nil when no bus
// is configured
func ProvideEventPublisher(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return nil
	}
	return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
}

// ProvideMetrics creates the CloudWatch recorder; disabled metrics get a
// recorder without a client
func ProvideMetrics(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.MetricsRecorder {
	if !cfg.EnableMetrics {
		return observability.NewMetrics(cfg.MetricsNamespace, nil, logger)
	}
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	return observability.NewMetrics(namespace, awscloudwatch.NewFromConfig(awsCfg), logger)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) ports.Tracer {
	return observability.NewTracer(cfg.ServiceName, cfg.EnableTracing)
}

// ProvideClusterLoader creates the cluster file loader
func ProvideClusterLoader() *loaders.ClusterLoader {
	return loaders.NewClusterLoader()
}

// ProvideCapacityValidator creates the capacity validator
func ProvideCapacityValidator(logger *zap.Logger) *validators.CapacityValidator {
	return validators.NewCapacityValidator(logger)
}

// ProvideIngestService wires the ingest pipeline
func ProvideIngestService(
	cfg *config.Config,
	loader *loaders.ClusterLoader,
	validator *validators.CapacityValidator,
	repo ports.ClusterRepository,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	tracer ports.Tracer,
	logger *zap.Logger,
) *services.IngestService {
	return services.NewIngestService(
		loader,
		validator,
		repo,
		publisher,
		metrics,
		tracer,
		logger,
		cfg.IngestConcurrency,
	)
}

// ProvideClusterQueryService creates the read-back service
func ProvideClusterQueryService(repo ports.ClusterRepository, logger *zap.Logger) *services.ClusterQueryService {
	return services.NewClusterQueryService(repo, logger)
}
