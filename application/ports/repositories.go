package ports

import (
	"context"
	"time"

	"github.com/shijuleon/allot/domain/core/entities"
	"github.com/shijuleon/allot/domain/events"
)

// WriteReceipt describes a completed cluster write
type WriteReceipt struct {
	ClusterID string
	// Version is the token stamped on the record by this write
	Version string
	// Attributes echoed back by the store; empty unless the store is asked
	// to return old values.
	Attributes map[string]interface{}
}

// ClusterRepository persists cluster records keyed by cluster ID
type ClusterRepository interface {
	// Save writes the whole record, overwriting any record with the same
	// cluster ID, and stamps a fresh version token on it.
	Save(ctx context.Context, cluster *entities.ClusterInfo) (*WriteReceipt, error)
	Get(ctx context.Context, clusterID string) (*entities.ClusterRecord, error)
	// CreateTableIfMissing never fails; problems are logged.
	CreateTableIfMissing(ctx context.Context) error
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// MetricsRecorder records ingest metrics. Implementations must not fail the
// caller.
type MetricsRecorder interface {
	RecordIngest(ctx context.Context, duration time.Duration, err error)
	RecordCapacityViolations(ctx context.Context, cluster string, count int)
}

// Tracer wraps an operation in a trace segment
type Tracer interface {
	TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error
}
