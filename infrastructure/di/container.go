package di

import (
	"go.uber.org/zap"

	"github.com/shijuleon/allot/application/services"
	"github.com/shijuleon/allot/infrastructure/config"
	"github.com/shijuleon/allot/infrastructure/persistence/dynamodb"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Repository    *dynamodb.ClusterRepository
	IngestService *services.IngestService
	QueryService  *services.ClusterQueryService
}
