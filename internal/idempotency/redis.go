package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of go-redis used by RedisStore.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisStore keeps responses in redis with a TTL.
type RedisStore struct {
	client    redisClient
	namespace string
	ttl       time.Duration
}

// NewRedisStore creates RedisStore over client. Keys are prefixed with namespace.
func NewRedisStore(client redisClient, namespace string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisStore) key(key string) string {
	return fmt.Sprintf("%s:idempotency:%s", s.namespace, key)
}

func (s *RedisStore) Get(ctx context.Context, key string) (*StoredResponse, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	var resp StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode idempotency entry: %w", err)
	}
	return &resp, nil
}

// Save keeps the first response stored for key.
func (s *RedisStore) Save(ctx context.Context, key string, response StoredResponse) error {
	raw, err := json.Marshal(response)
	if err != nil {
		return err
	}
	if err := s.client.SetNX(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save idempotency key: %w", err)
	}
	return nil
}
