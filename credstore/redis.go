package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis persists the credential under a single Redis key. Useful when the
// client runs in an environment without a writable filesystem.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis returns a Redis-backed store writing to key on client.
func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

// Get reads the credential key. A missing key yields the empty
// credential.
func (r *Redis) Get(ctx context.Context) (string, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get credential: %w", err)
	}
	return val, nil
}

// Set writes the credential key with no expiry; the credential's own
// lifetime is governed server-side.
func (r *Redis) Set(ctx context.Context, credential string) error {
	if err := r.client.Set(ctx, r.key, credential, 0).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

// Clear deletes the credential key. Idempotent.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis clear credential: %w", err)
	}
	return nil
}
