package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used for markers.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type dynamoMarker struct {
	PK          string `dynamodbav:"pk"`
	ProcessedAt string `dynamodbav:"processed_at"`
	ExpiresAt   int64  `dynamodbav:"expires_at"`
}

// DynamoReplayStore keeps markers in a table keyed by "pk" whose TTL
// attribute is "expires_at" (epoch seconds). DynamoDB deletes expired items
// lazily, so reads also compare expires_at against the clock.
type DynamoReplayStore struct {
	client DynamoAPI
	table  string
	now    func() time.Time
}

func NewDynamoReplayStore(client DynamoAPI, table string) *DynamoReplayStore {
	return &DynamoReplayStore{client: client, table: table, now: time.Now}
}

func (d *DynamoReplayStore) key(eventID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: KeyPrefix + eventID},
	}
}

func (d *DynamoReplayStore) Exists(ctx context.Context, key string) (bool, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      sdkaws.String(d.table),
		Key:            d.key(key),
		ConsistentRead: sdkaws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("dynamodb get marker: %w", err)
	}
	if len(out.Item) == 0 {
		return false, nil
	}

	var m dynamoMarker
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return false, fmt.Errorf("decode marker: %w", err)
	}
	return m.ExpiresAt > d.now().Unix(), nil
}

func (d *DynamoReplayStore) SetWithTTL(ctx context.Context, key string, ttl time.Duration) error {
	item, err := d.item(key, ttl)
	if err != nil {
		return err
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: sdkaws.String(d.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put marker: %w", err)
	}
	return nil
}

// SetIfAbsent writes the marker unless a live one exists.
func (d *DynamoReplayStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	item, err := d.item(key, ttl)
	if err != nil {
		return false, err
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           sdkaws.String(d.table),
		Item:                item,
		ConditionExpression: sdkaws.String("attribute_not_exists(pk) OR expires_at <= :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(d.now().Unix(), 10)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("dynamodb claim marker: %w", err)
	}
	return true, nil
}

func (d *DynamoReplayStore) Delete(ctx context.Context, key string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: sdkaws.String(d.table),
		Key:       d.key(key),
	})
	if err != nil {
		return fmt.Errorf("dynamodb delete marker: %w", err)
	}
	return nil
}

func (d *DynamoReplayStore) item(key string, ttl time.Duration) (map[string]types.AttributeValue, error) {
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	now := d.now().UTC()
	return attributevalue.MarshalMap(dynamoMarker{
		PK:          KeyPrefix + key,
		ProcessedAt: now.Format(time.RFC3339),
		ExpiresAt:   now.Add(ttl).Unix(),
	})
}
