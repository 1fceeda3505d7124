package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shijuleon/allot/application/ports"
	"github.com/shijuleon/allot/domain/core/entities"
	appErrors "github.com/shijuleon/allot/pkg/errors"
)

// TableOptions describes the cluster table and how writes are issued
type TableOptions struct {
	TableName          string
	ReadCapacityUnits  int64
	WriteCapacityUnits int64
	// ReturnValues is passed to PutItem; NONE or ALL_OLD.
	ReturnValues types.ReturnValue
	// OptimisticLocking makes Save read the current version and write only if
	// it is unchanged. Off, every write is a blind overwrite.
	OptimisticLocking bool
}

// DefaultTableOptions returns the servers table with 10 read / 5 write units
func DefaultTableOptions() TableOptions {
	return TableOptions{
		TableName:          "servers",
		ReadCapacityUnits:  10,
		WriteCapacityUnits: 5,
		ReturnValues:       types.ReturnValueNone,
	}
}

// PutResult is the outcome of a single PutItem
type PutResult struct {
	Version    string
	Attributes map[string]types.AttributeValue
}

// TableStatus is the outcome kind of a create-table request
type TableStatus int

const (
	TableCreated TableStatus = iota
	TableExists
	TableFailed
)

func (s TableStatus) String() string {
	switch s {
	case TableCreated:
		return "created"
	case TableExists:
		return "exists"
	default:
		return "failed"
	}
}

// TableOutcome is the result of EnsureTable. Err is set unless Status is
// TableCreated.
type TableOutcome struct {
	Status TableStatus
	Err    error
}

// ClusterRepository stores cluster records in a table keyed by cluster_id
type ClusterRepository struct {
	client     DynamoClient
	opts       TableOptions
	logger     *zap.Logger
	newVersion func() string
}

// NewClusterRepository creates a new ClusterRepository
func NewClusterRepository(client DynamoClient, opts TableOptions, logger *zap.Logger) *ClusterRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ReturnValues == "" {
		opts.ReturnValues = types.ReturnValueNone
	}
	return &ClusterRepository{
		client:     client,
		opts:       opts,
		logger:     logger,
		newVersion: uuid.NewString,
	}
}

var _ ports.ClusterRepository = (*ClusterRepository)(nil)

// Save maps the cluster and writes it, overwriting any record with the same
// cluster_id.
func (r *ClusterRepository) Save(ctx context.Context, cluster *entities.ClusterInfo) (*ports.WriteReceipt, error) {
	item, err := ClusterToAttributeMap(cluster)
	if err != nil {
		return nil, appErrors.NewInternalError("failed to map cluster", err)
	}

	var cond *expression.Expression
	if r.opts.OptimisticLocking {
		current, err := r.currentVersion(ctx, cluster.ClusterID)
		if err != nil {
			return nil, err
		}
		cond, err = versionCondition(current)
		if err != nil {
			return nil, appErrors.NewInternalError("failed to build version condition", err)
		}
	}

	result, err := r.put(ctx, item, cond)
	if err != nil {
		return nil, err
	}

	receipt := &ports.WriteReceipt{
		ClusterID: cluster.ClusterID,
		Version:   result.Version,
	}
	if len(result.Attributes) > 0 {
		decoded := make(map[string]interface{}, len(result.Attributes))
		if err := attributevalue.UnmarshalMap(result.Attributes, &decoded); err != nil {
			r.logger.Warn("Failed to decode returned attributes", zap.Error(err))
		} else {
			receipt.Attributes = decoded
			r.logger.Info("Put item returned attributes",
				zap.String("clusterID", cluster.ClusterID),
				zap.Any("attributes", decoded),
			)
		}
	}

	return receipt, nil
}

// PutRecord stamps a fresh version on a copy of item and writes it
// unconditionally. The caller's map is left untouched.
func (r *ClusterRepository) PutRecord(ctx context.Context, item map[string]types.AttributeValue) (*PutResult, error) {
	return r.put(ctx, item, nil)
}

func (r *ClusterRepository) put(ctx context.Context, item map[string]types.AttributeValue, cond *expression.Expression) (*PutResult, error) {
	version := r.newVersion()

	stamped := make(map[string]types.AttributeValue, len(item)+1)
	for k, v := range item {
		stamped[k] = v
	}
	stamped[attrVersion] = &types.AttributeValueMemberS{Value: version}

	input := &dynamodb.PutItemInput{
		TableName:    aws.String(r.opts.TableName),
		Item:         stamped,
		ReturnValues: r.opts.ReturnValues,
	}
	if cond != nil {
		input.ConditionExpression = cond.Condition()
		input.ExpressionAttributeNames = cond.Names()
		input.ExpressionAttributeValues = cond.Values()
	}

	out, err := r.client.PutItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, appErrors.NewConflictError("cluster record was modified concurrently").WithCause(err)
		}
		r.logger.Error("Failed to put item",
			zap.String("table", r.opts.TableName),
			zap.Error(err),
		)
		return nil, appErrors.NewStoreError("PutItem", err)
	}

	r.logger.Debug("Put item",
		zap.String("table", r.opts.TableName),
		zap.String("version", version),
	)

	return &PutResult{Version: version, Attributes: out.Attributes}, nil
}

// Get reads a stored cluster record by its cluster ID
func (r *ClusterRepository) Get(ctx context.Context, clusterID string) (*entities.ClusterRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.opts.TableName),
		Key:            clusterKey(clusterID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, appErrors.NewStoreError("GetItem", err)
	}
	if out.Item == nil {
		return nil, appErrors.NewNotFoundError(fmt.Sprintf("cluster %s", clusterID))
	}

	record, err := ClusterFromAttributeMap(out.Item)
	if err != nil {
		return nil, appErrors.NewStoreError("GetItem", err).WithCode("MalformedItem")
	}
	return record, nil
}

func (r *ClusterRepository) currentVersion(ctx context.Context, clusterID string) (string, error) {
	proj, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name(attrVersion))).
		Build()
	if err != nil {
		return "", appErrors.NewInternalError("failed to build projection", err)
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.opts.TableName),
		Key:                      clusterKey(clusterID),
		ProjectionExpression:     proj.Projection(),
		ExpressionAttributeNames: proj.Names(),
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return "", appErrors.NewStoreError("GetItem", err)
	}

	if v, ok := out.Item[attrVersion].(*types.AttributeValueMemberS); ok {
		return v.Value, nil
	}
	return "", nil
}

// versionCondition requires the stored version to still be current; an
// absent version (or record) is required to stay absent.
func versionCondition(current string) (*expression.Expression, error) {
	cond := expression.AttributeNotExists(expression.Name(attrVersion))
	if current != "" {
		cond = expression.Name(attrVersion).Equal(expression.Value(current))
	}
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, err
	}
	return &expr, nil
}

func clusterKey(clusterID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrClusterID: &types.AttributeValueMemberN{Value: clusterID},
	}
}

// EnsureTable issues a create-table request for the cluster table: a single
// numeric hash key cluster_id with fixed provisioned throughput.
func (r *ClusterRepository) EnsureTable(ctx context.Context) TableOutcome {
	_, err := r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.opts.TableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(attrClusterID),
				AttributeType: types.ScalarAttributeTypeN,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(attrClusterID),
				KeyType:       types.KeyTypeHash,
			},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(r.opts.ReadCapacityUnits),
			WriteCapacityUnits: aws.Int64(r.opts.WriteCapacityUnits),
		},
	})
	if err == nil {
		return TableOutcome{Status: TableCreated}
	}

	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) || appErrors.APIErrorCode(err) == "ResourceInUseException" {
		return TableOutcome{Status: TableExists, Err: err}
	}
	return TableOutcome{Status: TableFailed, Err: appErrors.NewStoreError("CreateTable", err)}
}

// CreateTableIfMissing creates the table and logs the outcome. A failure,
// including an existing table, is logged and swallowed.
func (r *ClusterRepository) CreateTableIfMissing(ctx context.Context) error {
	switch outcome := r.EnsureTable(ctx); outcome.Status {
	case TableCreated:
		r.logger.Info("Added table",
			zap.String("table", r.opts.TableName),
			zap.String("key", attrClusterID),
		)
	case TableExists:
		r.logger.Warn("Table already exists",
			zap.String("table", r.opts.TableName),
			zap.Error(outcome.Err),
		)
	default:
		r.logger.Error("Got an error creating table",
			zap.String("table", r.opts.TableName),
			zap.Error(outcome.Err),
		)
	}
	return nil
}
