package repository_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/stripe-bridge/repository"
)

// fakeDynamo evaluates the claim condition the way the table would.
type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
	puts  []*dynamodb.PutItemInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func pk(item map[string]types.AttributeValue) string {
	return item["pk"].(*types.AttributeValueMemberS).Value
}

func num(av types.AttributeValue) int64 {
	n, _ := strconv.ParseInt(av.(*types.AttributeValueMemberN).Value, 10, 64)
	return n
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[pk(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	key := pk(in.Item)
	if in.ConditionExpression != nil {
		if existing, ok := f.items[key]; ok {
			now := num(in.ExpressionAttributeValues[":now"])
			if num(existing["expires_at"]) > now {
				return nil, &types.ConditionalCheckFailedException{Message: stringPtr("conditional check failed")}
			}
		}
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, pk(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func stringPtr(s string) *string { return &s }

func TestDynamoStore_RoundTrip(t *testing.T) {
	api := newFakeDynamo()
	store := repository.NewDynamoReplayStore(api, "replay")
	ctx := context.Background()

	ok, err := store.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetWithTTL(ctx, "evt_1", time.Hour))
	require.Len(t, api.puts, 1)
	assert.Equal(t, "replay", *api.puts[0].TableName)
	assert.Contains(t, api.items, "stripe:webhook:processed:evt_1")

	ok, err = store.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "evt_1"))
	ok, _ = store.Exists(ctx, "evt_1")
	assert.False(t, ok)
}

func TestDynamoStore_ExpiredItemIsAbsent(t *testing.T) {
	api := newFakeDynamo()
	api.items["stripe:webhook:processed:evt_old"] = map[string]types.AttributeValue{
		"pk":           &types.AttributeValueMemberS{Value: "stripe:webhook:processed:evt_old"},
		"processed_at": &types.AttributeValueMemberS{Value: "2020-01-01T00:00:00Z"},
		"expires_at":   &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10)},
	}
	store := repository.NewDynamoReplayStore(api, "replay")

	ok, err := store.Exists(context.Background(), "evt_old")
	require.NoError(t, err)
	assert.False(t, ok)

	claimed, err := store.SetIfAbsent(context.Background(), "evt_old", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestDynamoStore_SetIfAbsent(t *testing.T) {
	store := repository.NewDynamoReplayStore(newFakeDynamo(), "replay")
	ctx := context.Background()

	first, err := store.SetIfAbsent(ctx, "evt_1", time.Hour)
	require.NoError(t, err)
	second, err := store.SetIfAbsent(ctx, "evt_1", time.Hour)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}
