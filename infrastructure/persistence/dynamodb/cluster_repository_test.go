package dynamodb

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appErrors "github.com/shijuleon/allot/pkg/errors"
)

type MockDynamoClient struct {
	mock.Mock
}

func (m *MockDynamoClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *MockDynamoClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *MockDynamoClient) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.CreateTableOutput), args.Error(1)
}

func capturePuts(client *MockDynamoClient, out *dynamodb.PutItemOutput, err error) *[]*dynamodb.PutItemInput {
	var inputs []*dynamodb.PutItemInput
	client.On("PutItem", mock.Anything, mock.AnythingOfType("*dynamodb.PutItemInput")).
		Run(func(args mock.Arguments) {
			inputs = append(inputs, args.Get(1).(*dynamodb.PutItemInput))
		}).
		Return(out, err)
	return &inputs
}

func TestSave_WritesMappedItemWithVersion(t *testing.T) {
	ctx := context.Background()
	client := new(MockDynamoClient)
	puts := capturePuts(client, &dynamodb.PutItemOutput{}, nil)

	repo := NewClusterRepository(client, DefaultTableOptions(), zap.NewNop())
	receipt, err := repo.Save(ctx, eastCluster())

	require.NoError(t, err)
	require.Len(t, *puts, 1)
	input := (*puts)[0]
	assert.Equal(t, "servers", aws.ToString(input.TableName))
	assert.Nil(t, input.ConditionExpression)
	assert.Equal(t, types.ReturnValueNone, input.ReturnValues)

	version, ok := input.Item["version"].(*types.AttributeValueMemberS)
	require.True(t, ok, "version must be an S attribute")
	assert.Equal(t, receipt.Version, version.Value)
	assert.NotEmpty(t, version.Value)

	expected, err := ClusterToAttributeMap(eastCluster())
	require.NoError(t, err)
	delete(input.Item, "version")
	assert.Equal(t, expected, input.Item)
	assert.Equal(t, "1", receipt.ClusterID)
	assert.Nil(t, receipt.Attributes)
}

func TestSave_VersionChangesOnEveryWrite(t *testing.T) {
	ctx := context.Background()
	client := new(MockDynamoClient)
	puts := capturePuts(client, &dynamodb.PutItemOutput{}, nil)
	repo := NewClusterRepository(client, DefaultTableOptions(), zap.NewNop())

	first, err := repo.Save(ctx, eastCluster())
	require.NoError(t, err)
	second, err := repo.Save(ctx, eastCluster())
	require.NoError(t, err)

	assert.NotEqual(t, first.Version, second.Version)
	require.Len(t, *puts, 2)
	assert.NotEqual(t,
		(*puts)[0].Item["version"].(*types.AttributeValueMemberS).Value,
		(*puts)[1].Item["version"].(*types.AttributeValueMemberS).Value,
	)
}

func TestPutRecord_OverwritesVersionWithoutTouchingInput(t *testing.T) {
	client := new(MockDynamoClient)
	puts := capturePuts(client, &dynamodb.PutItemOutput{}, nil)
	repo := NewClusterRepository(client, DefaultTableOptions(), zap.NewNop())
	repo.newVersion = func() string { return "fresh" }

	item, err := ClusterToAttributeMap(eastCluster())
	require.NoError(t, err)
	item["version"] = &types.AttributeValueMemberS{Value: "stale"}

	result, err := repo.PutRecord(context.Background(), item)

	require.NoError(t, err)
	assert.Equal(t, "fresh", result.Version)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "fresh"}, (*puts)[0].Item["version"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "stale"}, item["version"])
}

func TestSave_DecodesReturnedAttributes(t *testing.T) {
	client := new(MockDynamoClient)
	opts := DefaultTableOptions()
	opts.ReturnValues = types.ReturnValueAllOld
	capturePuts(client, &dynamodb.PutItemOutput{Attributes: map[string]types.AttributeValue{
		"cluster":    &types.AttributeValueMemberS{Value: "east"},
		"cluster_id": &types.AttributeValueMemberN{Value: "1"},
	}}, nil)

	repo := NewClusterRepository(client, opts, zap.NewNop())
	receipt, err := repo.Save(context.Background(), eastCluster())

	require.NoError(t, err)
	assert.Equal(t, "east", receipt.Attributes["cluster"])
	assert.Equal(t, float64(1), receipt.Attributes["cluster_id"])
}

func TestSave_StoreErrorPropagates(t *testing.T) {
	client := new(MockDynamoClient)
	throttled := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
	capturePuts(client, nil, throttled)

	repo := NewClusterRepository(client, DefaultTableOptions(), zap.NewNop())
	_, err := repo.Save(context.Background(), eastCluster())

	require.Error(t, err)
	assert.True(t, appErrors.IsStoreError(err))
	assert.Equal(t, "ProvisionedThroughputExceededException", appErrors.GetAppError(err).Code)
}

func TestSave_NilCluster(t *testing.T) {
	client := new(MockDynamoClient)
	repo := NewClusterRepository(client, DefaultTableOptions(), zap.NewNop())

	_, err := repo.Save(context.Background(), nil)

	require.Error(t, err)
	client.AssertNotCalled(t, "PutItem", mock.Anything, mock.Anything)
}

func TestSave_OptimisticLocking(t *testing.T) {
	ctx := context.Background()
	opts := DefaultTableOptions()
	opts.OptimisticLocking = true

	t.Run("existing version becomes the condition", func(t *testing.T) {
		client := new(MockDynamoClient)
		client.On("GetItem", ctx, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return in.ProjectionExpression != nil &&
				assert.ObjectsAreEqual(&types.AttributeValueMemberN{Value: "1"}, in.Key["cluster_id"])
		})).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
			"version": &types.AttributeValueMemberS{Value: "v-old"},
		}}, nil)
		puts := capturePuts(client, &dynamodb.PutItemOutput{}, nil)

		repo := NewClusterRepository(client, opts, zap.NewNop())
		_, err := repo.Save(ctx, eastCluster())

		require.NoError(t, err)
		input := (*puts)[0]
		require.NotNil(t, input.ConditionExpression)
		assert.Contains(t, input.ExpressionAttributeNames, "#0")
		assert.Equal(t, "version", input.ExpressionAttributeNames["#0"])
		assert.Equal(t, &types.AttributeValueMemberS{Value: "v-old"}, input.ExpressionAttributeValues[":0"])
	})

	t.Run("missing record requires the version to stay absent", func(t *testing.T) {
		client := new(MockDynamoClient)
		client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)
		puts := capturePuts(client, &dynamodb.PutItemOutput{}, nil)

		repo := NewClusterRepository(client, opts, zap.NewNop())
		_, err := repo.Save(ctx, eastCluster())

		require.NoError(t, err)
		input := (*puts)[0]
		assert.Contains(t, aws.ToString(input.ConditionExpression), "attribute_not_exists")
		assert.Empty(t, input.ExpressionAttributeValues)
	})

	t.Run("failed condition is a conflict", func(t *testing.T) {
		client := new(MockDynamoClient)
		client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)
		capturePuts(client, nil, &types.ConditionalCheckFailedException{Message: aws.String("nope")})

		repo := NewClusterRepository(client, opts, zap.NewNop())
		_, err := repo.Save(ctx, eastCluster())

		require.Error(t, err)
		assert.True(t, appErrors.IsConflict(err))
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	item, err := ClusterToAttributeMap(eastCluster())
	require.NoError(t, err)
	item["version"] = &types.AttributeValueMemberS{Value: "v-9"}

	client := new(MockDynamoClient)
	client.On("GetItem", ctx, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		n, ok := in.Key["cluster_id"].(*types.AttributeValueMemberN)
		return ok && n.Value == "1"
	})).Return(&dynamodb.GetItemOutput{Item: item}, nil)
	client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	repo := NewClusterRepository(client, DefaultTableOptions(), zap.NewNop())

	record, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "east", record.Cluster)
	assert.Equal(t, "v-9", record.Version)

	_, err = repo.Get(ctx, "2")
	assert.True(t, appErrors.IsNotFound(err))
}

func TestEnsureTable_Schema(t *testing.T) {
	ctx := context.Background()
	client := new(MockDynamoClient)
	var input *dynamodb.CreateTableInput
	client.On("CreateTable", ctx, mock.Anything).
		Run(func(args mock.Arguments) { input = args.Get(1).(*dynamodb.CreateTableInput) }).
		Return(&dynamodb.CreateTableOutput{}, nil)

	repo := NewClusterRepository(client, DefaultTableOptions(), zap.NewNop())
	outcome := repo.EnsureTable(ctx)

	assert.Equal(t, TableCreated, outcome.Status)
	assert.NoError(t, outcome.Err)
	require.NotNil(t, input)
	assert.Equal(t, "servers", aws.ToString(input.TableName))
	assert.Equal(t, []types.KeySchemaElement{{AttributeName: aws.String("cluster_id"), KeyType: types.KeyTypeHash}}, input.KeySchema)
	assert.Equal(t, []types.AttributeDefinition{{AttributeName: aws.String("cluster_id"), AttributeType: types.ScalarAttributeTypeN}}, input.AttributeDefinitions)
	assert.Equal(t, int64(10), aws.ToInt64(input.ProvisionedThroughput.ReadCapacityUnits))
	assert.Equal(t, int64(5), aws.ToInt64(input.ProvisionedThroughput.WriteCapacityUnits))
}

func TestCreateTableIfMissing_SwallowsErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  TableStatus
		level   zapcore.Level
		message string
	}{
		{
			name:    "created",
			status:  TableCreated,
			level:   zapcore.InfoLevel,
			message: "Added table",
		},
		{
			name:    "already exists",
			err:     &types.ResourceInUseException{Message: aws.String("Table already exists: servers")},
			status:  TableExists,
			level:   zapcore.WarnLevel,
			message: "Table already exists",
		},
		{
			name:    "connection refused",
			err:     fmt.Errorf("dial tcp 127.0.0.1:4566: connect: connection refused"),
			status:  TableFailed,
			level:   zapcore.ErrorLevel,
			message: "Got an error creating table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			client := new(MockDynamoClient)
			if tt.err != nil {
				client.On("CreateTable", ctx, mock.Anything).Return(nil, tt.err)
			} else {
				client.On("CreateTable", ctx, mock.Anything).Return(&dynamodb.CreateTableOutput{}, nil)
			}
			core, logs := observer.New(zapcore.DebugLevel)
			repo := NewClusterRepository(client, DefaultTableOptions(), zap.New(core))

			assert.Equal(t, tt.status, repo.EnsureTable(ctx).Status)
			assert.NoError(t, repo.CreateTableIfMissing(ctx))

			entries := logs.FilterMessage(tt.message).All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
		})
	}
}
