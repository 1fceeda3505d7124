package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shijuleon/allot/application/loaders"
	"github.com/shijuleon/allot/application/ports"
	"github.com/shijuleon/allot/domain/core/entities"
	"github.com/shijuleon/allot/domain/core/validators"
	"github.com/shijuleon/allot/domain/events"
	appErrors "github.com/shijuleon/allot/pkg/errors"

	"go.uber.org/zap"
)

// IngestResult is the outcome of one cluster ingest
type IngestResult struct {
	ClusterID  string
	Version    string
	Violations []validators.CapacityViolation
	Attributes map[string]interface{}
}

// IngestService runs the load, validate, write pipeline for cluster files
type IngestService struct {
	loader      *loaders.ClusterLoader
	validator   *validators.CapacityValidator
	repo        ports.ClusterRepository
	publisher   ports.EventPublisher
	metrics     ports.MetricsRecorder
	tracer      ports.Tracer
	logger      *zap.Logger
	concurrency int
	now         func() time.Time
}

// NewIngestService creates a new ingest service. publisher, metrics and
// tracer may be nil.
func NewIngestService(
	loader *loaders.ClusterLoader,
	validator *validators.CapacityValidator,
	repo ports.ClusterRepository,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	tracer ports.Tracer,
	logger *zap.Logger,
	concurrency int,
) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &IngestService{
		loader:      loader,
		validator:   validator,
		repo:        repo,
		publisher:   publisher,
		metrics:     metrics,
		tracer:      tracer,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Ingest loads the cluster file at path, validates it and writes it.
// IO and parse failures abort before the store is contacted.
func (s *IngestService) Ingest(ctx context.Context, path string) (*IngestResult, error) {
	var result *IngestResult
	err := s.trace(ctx, "Ingest", func(ctx context.Context) error {
		start := s.now()
		cluster, err := s.loader.LoadFromPath(path)
		if err != nil {
			s.logger.Error("Failed to load cluster file", zap.String("path", path), zap.Error(err))
			if s.metrics != nil {
				s.metrics.RecordIngest(ctx, s.now().Sub(start), err)
			}
			return err
		}

		result, err = s.IngestRecord(ctx, cluster)
		return err
	})
	return result, err
}

// IngestDocument parses an in-memory cluster description and writes it
func (s *IngestService) IngestDocument(ctx context.Context, contents []byte) (*IngestResult, error) {
	var result *IngestResult
	err := s.trace(ctx, "IngestDocument", func(ctx context.Context) error {
		cluster, err := s.loader.Parse(contents)
		if err != nil {
			return err
		}
		result, err = s.IngestRecord(ctx, cluster)
		return err
	})
	return result, err
}

// IngestRecord validates and writes an already parsed cluster. Capacity
// violations are reported but the record is written regardless.
func (s *IngestService) IngestRecord(ctx context.Context, cluster *entities.ClusterInfo) (result *IngestResult, err error) {
	start := s.now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordIngest(ctx, s.now().Sub(start), err)
		}
	}()

	violations := s.validator.Validate(cluster.Hosts)

	receipt, err := s.repo.Save(ctx, cluster)
	if err != nil {
		if appErrors.IsConflict(err) {
			s.logger.Warn("Cluster was modified concurrently, write rejected",
				zap.String("clusterID", cluster.ClusterID),
			)
		} else {
			s.logger.Error("Failed to write cluster",
				zap.String("clusterID", cluster.ClusterID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("Cluster written",
		zap.String("clusterID", receipt.ClusterID),
		zap.String("cluster", cluster.Cluster),
		zap.String("version", receipt.Version),
		zap.Int("hosts", cluster.HostCount()),
		zap.Int("capacityViolations", len(violations)),
	)

	if s.metrics != nil && len(violations) > 0 {
		s.metrics.RecordCapacityViolations(ctx, cluster.Cluster, len(violations))
	}
	s.publish(ctx, cluster, receipt, violations)

	return &IngestResult{
		ClusterID:  receipt.ClusterID,
		Version:    receipt.Version,
		Violations: violations,
		Attributes: receipt.Attributes,
	}, nil
}

// IngestAll ingests every path on a bounded worker pool. Results are in path
// order; the first failure cancels the remaining work and is returned with
// the failing path prefixed to its message.
func (s *IngestService) IngestAll(ctx context.Context, paths []string) ([]*IngestResult, error) {
	results := make([]*IngestResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.Ingest(ctx, path)
			if err != nil {
				return appErrors.Wrap(err, fmt.Sprintf("cluster file %s", path))
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *IngestService) trace(ctx context.Context, name string, fn func(context.Context) error) error {
	if s.tracer == nil {
		return fn(ctx)
	}
	return s.tracer.TraceFunction(ctx, name, fn)
}

// publish is best effort: the record is already written.
func (s *IngestService) publish(ctx context.Context, cluster *entities.ClusterInfo, receipt *ports.WriteReceipt, violations []validators.CapacityViolation) {
	if s.publisher == nil {
		return
	}

	now := s.now()
	batch := make([]events.DomainEvent, 0, len(violations)+1)
	batch = append(batch, events.NewClusterRecorded(
		receipt.ClusterID, cluster.Cluster, receipt.Version, cluster.HostCount(), len(violations), now,
	))
	for _, v := range violations {
		batch = append(batch, events.NewCapacityExceeded(receipt.ClusterID, v.Identifier, v.Capacity, v.Used, now))
	}

	if err := s.publisher.PublishBatch(ctx, batch); err != nil {
		s.logger.Warn("Failed to publish cluster events",
			zap.String("clusterID", receipt.ClusterID),
			zap.Error(err),
		)
	}
}
