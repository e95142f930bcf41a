// Package kv provides the narrow key-value interface the session layer
// consumes, backed by redis. TTL enforcement lives in the store itself.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound is returned when a key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// KV is the ephemeral store surface: get, set-with-expiry, delete.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// NewClient connects to redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	slog.Info("connected to redis", "addr", addr)
	return client, nil
}

// RedisKV implements KV over a redis client.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV wraps an existing redis client.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get returns the value for key, or ErrKeyNotFound if absent.
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, nil
}

// SetWithTTL stores a value that the store evicts after ttl.
func (r *RedisKV) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Del removes a key. Deleting an absent key is not an error.
func (r *RedisKV) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// HealthCheck verifies the redis connection is alive.
func (r *RedisKV) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
