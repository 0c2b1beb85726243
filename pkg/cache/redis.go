package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a shared Redis instance. Keys live under a
// namespace plus a generation counter, so Clear is a single INCR instead of
// a scan-and-delete over the keyspace.
type Redis struct {
	client    *redis.Client
	namespace string
}

// NewRedis wraps an existing Redis client. All keys are prefixed with the
// given namespace.
func NewRedis(client *redis.Client, namespace string) *Redis {
	if namespace == "" {
		namespace = "polymarket"
	}
	return &Redis{client: client, namespace: namespace}
}

func (r *Redis) generationKey() string {
	return r.namespace + ":generation"
}

func (r *Redis) key(ctx context.Context, key string) (string, error) {
	generation, err := r.client.Get(ctx, r.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to read cache generation: %w", err)
	}
	return fmt.Sprintf("%s:%d:%s", r.namespace, generation, key), nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	fullKey, err := r.key(ctx, key)
	if err != nil {
		return "", false, err
	}
	value, err := r.client.Get(ctx, fullKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	fullKey, err := r.key(ctx, key)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, fullKey, value, 0).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	fullKey, err := r.key(ctx, key)
	if err != nil {
		return err
	}
	if err := r.client.Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("cache delete %q: %w", key, err)
	}
	return nil
}

// Clear bumps the generation counter, orphaning every key written under the
// previous generation. Orphans expire under Redis memory pressure.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Incr(ctx, r.generationKey()).Err(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
