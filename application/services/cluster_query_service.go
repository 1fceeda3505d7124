package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shijuleon/allot/application/ports"
	"github.com/shijuleon/allot/domain/core/entities"
	"github.com/shijuleon/allot/domain/core/valueobjects"
	appErrors "github.com/shijuleon/allot/pkg/errors"
)

// ClusterQueryService reads stored cluster records back
type ClusterQueryService struct {
	repo   ports.ClusterRepository
	logger *zap.Logger
}

// NewClusterQueryService creates a new query service
func NewClusterQueryService(repo ports.ClusterRepository, logger *zap.Logger) *ClusterQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClusterQueryService{repo: repo, logger: logger}
}

// GetCluster returns the stored record for clusterID. An ID that is not a
// numeral is a parse error and never reaches the store.
func (s *ClusterQueryService) GetCluster(ctx context.Context, clusterID string) (*entities.ClusterRecord, error) {
	if _, err := valueobjects.ParseNumeral(clusterID); err != nil {
		return nil, appErrors.NewParseError(fmt.Sprintf("invalid cluster id %q", clusterID), err)
	}

	record, err := s.repo.Get(ctx, clusterID)
	if err != nil {
		if appErrors.IsNotFound(err) {
			s.logger.Info("Cluster not found", zap.String("clusterID", clusterID))
		} else {
			s.logger.Error("Failed to read cluster", zap.String("clusterID", clusterID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Debug("Cluster read",
		zap.String("clusterID", record.ClusterID),
		zap.String("version", record.Version),
	)
	return record, nil
}
