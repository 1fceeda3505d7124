package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/shijuleon/allot/pkg/errors"
)

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func metricNames(in *cloudwatch.PutMetricDataInput) []string {
	names := make([]string, 0, len(in.MetricData))
	for _, d := range in.MetricData {
		names = append(names, aws.ToString(d.MetricName))
	}
	return names
}

func TestRecordIngest_Success(t *testing.T) {
	client := &fakeCloudWatch{}
	m := NewMetrics("Allot/test", client, zap.NewNop())

	m.RecordIngest(context.Background(), 25*time.Millisecond, nil)

	require.Len(t, client.inputs, 1)
	assert.Equal(t, "Allot/test", aws.ToString(client.inputs[0].Namespace))
	assert.Equal(t, []string{"IngestLatency", "IngestCount"}, metricNames(client.inputs[0]))
	assert.Equal(t, float64(25), aws.ToFloat64(client.inputs[0].MetricData[0].Value))
}

func TestRecordIngest_FailureAddsErrorType(t *testing.T) {
	client := &fakeCloudWatch{}
	m := NewMetrics("Allot/test", client, zap.NewNop())

	m.RecordIngest(context.Background(), time.Millisecond, appErrors.NewParseError("bad", nil))

	require.Len(t, client.inputs, 1)
	assert.Equal(t, []string{"IngestLatency", "IngestCount", "Errors"}, metricNames(client.inputs[0]))
	assert.Equal(t, "PARSE", aws.ToString(client.inputs[0].MetricData[2].Dimensions[0].Value))
}

func TestRecordCapacityViolations(t *testing.T) {
	client := &fakeCloudWatch{err: errors.New("throttled")}
	m := NewMetrics("Allot/test", client, zap.NewNop())

	m.RecordCapacityViolations(context.Background(), "east", 3)

	require.Len(t, client.inputs, 1)
	assert.Equal(t, float64(3), aws.ToFloat64(client.inputs[0].MetricData[0].Value))
}

func TestMetrics_NilClientIsNoop(t *testing.T) {
	m := NewMetrics("Allot/test", nil, nil)

	assert.NotPanics(t, func() {
		m.RecordIngest(context.Background(), time.Second, nil)
		m.RecordCapacityViolations(context.Background(), "east", 1)
	})
}

func TestTracer_DisabledRunsFunction(t *testing.T) {
	tr := NewTracer("allot", false)
	called := false

	err := tr.TraceFunction(context.Background(), "Ingest", func(context.Context) error {
		called = true
		return errors.New("boom")
	})

	assert.True(t, called)
	assert.EqualError(t, err, "boom")
}
