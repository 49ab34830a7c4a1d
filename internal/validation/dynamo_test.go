package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDynamo is a mock implementation of the DynamoAPI interface
type MockDynamo struct {
	mock.Mock
}

func (m *MockDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *MockDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *MockDynamo) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DescribeTableOutput), args.Error(1)
}

func itemFor(t *testing.T, item dynamoItem) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(item)
	require.NoError(t, err)
	return av
}

func TestDynamoStore_Put(t *testing.T) {
	client := new(MockDynamo)
	store := NewDynamoStore(client, "validations")
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	var captured *dynamodb.PutItemInput
	client.On("PutItem", ctx, mock.AnythingOfType("*dynamodb.PutItemInput")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.PutItemInput) }).
		Return(&dynamodb.PutItemOutput{}, nil)

	require.NoError(t, store.Put(ctx, "abc", sampleRecord, time.Hour))

	var item dynamoItem
	require.NoError(t, attributevalue.UnmarshalMap(captured.Item, &item))
	assert.Equal(t, "validations", *captured.TableName)
	assert.Equal(t, "abc", item.ValidationNumber)
	assert.Equal(t, now.Add(time.Hour).Unix(), item.ExpiresAt)

	record, err := DecodeRecord([]byte(item.Payload))
	require.NoError(t, err)
	assert.Equal(t, sampleRecord, *record)

	client.AssertExpectations(t)
}

func TestDynamoStore_Get(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	payload, err := EncodeRecord(sampleRecord)
	require.NoError(t, err)

	tests := []struct {
		name    string
		output  *dynamodb.GetItemOutput
		err     error
		wantErr error
	}{
		{
			name:   "present",
			output: &dynamodb.GetItemOutput{Item: itemFor(t, dynamoItem{ValidationNumber: "abc", Payload: string(payload), ExpiresAt: now.Add(time.Hour).Unix()})},
		},
		{
			name:    "absent",
			output:  &dynamodb.GetItemOutput{},
			wantErr: ErrNotFound,
		},
		{
			name:    "expired but not yet swept",
			output:  &dynamodb.GetItemOutput{Item: itemFor(t, dynamoItem{ValidationNumber: "abc", Payload: string(payload), ExpiresAt: now.Add(-time.Second).Unix()})},
			wantErr: ErrNotFound,
		},
		{
			name:    "empty payload",
			output:  &dynamodb.GetItemOutput{Item: itemFor(t, dynamoItem{ValidationNumber: "abc"})},
			wantErr: ErrMalformed,
		},
		{
			name:    "payload of wrong type",
			output:  &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{"validation_number": &types.AttributeValueMemberS{Value: "abc"}, "payload": &types.AttributeValueMemberBOOL{Value: true}}},
			wantErr: ErrMalformed,
		},
		{
			name:    "network failure",
			err:     errors.New("request timeout"),
			wantErr: ErrUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockDynamo)
			store := NewDynamoStore(client, "validations")
			store.now = func() time.Time { return now }
			ctx := context.Background()

			if tt.output != nil {
				client.On("GetItem", ctx, mock.AnythingOfType("*dynamodb.GetItemInput")).Return(tt.output, nil)
			} else {
				client.On("GetItem", ctx, mock.AnythingOfType("*dynamodb.GetItemInput")).Return(nil, tt.err)
			}

			record, err := store.Get(ctx, "abc")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sampleRecord, *record)
		})
	}
}

func TestDynamoStore_Ping(t *testing.T) {
	client := new(MockDynamo)
	store := NewDynamoStore(client, "validations")
	ctx := context.Background()

	client.On("DescribeTable", ctx, mock.AnythingOfType("*dynamodb.DescribeTableInput")).Return(nil, errors.New("no route to host")).Once()
	assert.ErrorIs(t, store.Ping(ctx), ErrUnreachable)

	client.On("DescribeTable", ctx, mock.AnythingOfType("*dynamodb.DescribeTableInput")).Return(&dynamodb.DescribeTableOutput{}, nil).Once()
	assert.NoError(t, store.Ping(ctx))
}
