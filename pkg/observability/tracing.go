package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"

	"github.com/shijuleon/allot/application/ports"
)

// Tracer provides distributed tracing. A disabled tracer runs functions
// untouched.
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{
		serviceName: serviceName,
		enabled:     enabled,
	}
}

var _ ports.Tracer = (*Tracer)(nil)

// TraceFunction runs fn inside a segment, or a subsegment when ctx already
// carries one
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	var seg *xray.Segment
	if xray.GetSegment(ctx) == nil {
		ctx, seg = xray.BeginSegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
	} else {
		ctx, seg = xray.BeginSubsegment(ctx, name)
	}

	err := fn(ctx)
	seg.Close(err)
	return err
}
