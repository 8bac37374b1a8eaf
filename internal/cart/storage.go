package cart

import (
	"context"
	"errors"
	"time"

	"github.com/origen-putumayo/storefront/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RedisStorage keeps cart snapshots in Redis. A zero TTL keeps them until overwritten.
type RedisStorage struct {
	kv  kvStore
	ttl time.Duration
}

// NewRedisStorage wraps the shared redis client.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{kv: client, ttl: ttl}
}

func (r *RedisStorage) Read(ctx context.Context, key string) ([]byte, error) {
	value, err := r.kv.Get(ctx, key)
	if errors.Is(err, redis.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (r *RedisStorage) Write(ctx context.Context, key string, data []byte) error {
	return r.kv.Set(ctx, key, data, r.ttl)
}
