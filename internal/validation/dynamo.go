package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of *dynamodb.Client the store uses
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

const dynamoKey = "validation_number"

// dynamoItem is the table layout; expires_at is configured as the table's TTL attribute
type dynamoItem struct {
	ValidationNumber string `dynamodbav:"validation_number"`
	Payload          string `dynamodbav:"payload"`
	ExpiresAt        int64  `dynamodbav:"expires_at,omitempty"`
}

// DynamoStore keeps validation records in a DynamoDB table with native TTL
type DynamoStore struct {
	client DynamoAPI
	table  string
	now    func() time.Time
}

// NewDynamoStore creates a store over table
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table, now: time.Now}
}

func (s *DynamoStore) Put(ctx context.Context, id string, record Record, ttl time.Duration) error {
	data, err := EncodeRecord(record)
	if err != nil {
		return fmt.Errorf("failed to encode validation record: %w", err)
	}

	item := dynamoItem{ValidationNumber: id, Payload: string(data)}
	if ttl > 0 {
		item.ExpiresAt = s.now().Add(ttl).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal validation item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return unreachable("put item", err)
	}
	return nil
}

func (s *DynamoStore) Get(ctx context.Context, id string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            map[string]types.AttributeValue{dynamoKey: &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, unreachable("get item", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// TTL deletion is lazy; treat items past expiry as gone
	if item.ExpiresAt > 0 && s.now().Unix() >= item.ExpiresAt {
		return nil, ErrNotFound
	}

	return DecodeRecord([]byte(item.Payload))
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err != nil {
		return unreachable("describe table", err)
	}
	return nil
}

func (s *DynamoStore) Close() error {
	return nil
}
