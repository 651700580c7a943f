package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCommands is the subset of *redis.Client used for markers.
type RedisCommands interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisReplayStore keeps markers as plain keys with a native expiry.
type RedisReplayStore struct {
	client RedisCommands
	prefix string
	now    func() time.Time
}

func NewRedisReplayStore(client RedisCommands) *RedisReplayStore {
	return &RedisReplayStore{
		client: client,
		prefix: KeyPrefix,
		now:    time.Now,
	}
}

func (r *RedisReplayStore) key(eventID string) string {
	return r.prefix + eventID
}

func (r *RedisReplayStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisReplayStore) SetWithTTL(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return r.client.Set(ctx, r.key(key), r.stamp(), ttl).Err()
}

func (r *RedisReplayStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, ErrInvalidTTL
	}
	return r.client.SetNX(ctx, r.key(key), r.stamp(), ttl).Result()
}

func (r *RedisReplayStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisReplayStore) stamp() string {
	return r.now().UTC().Format(time.RFC3339)
}
