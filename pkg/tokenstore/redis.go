package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of redis.UniversalClient the store uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps the token under a single key, for callers that share a session
// between processes.
type RedisStore struct {
	client RedisClient
	key    string
}

// NewRedisStore creates a store reading key. An empty key falls back to "banking:token".
func NewRedisStore(client RedisClient, key string) *RedisStore {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "banking:token"
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token from redis: %w", err)
	}
	return strings.TrimSpace(token), nil
}

// Save stores the token. A positive ttl lets the key expire with the session.
func (s *RedisStore) Save(ctx context.Context, token string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key, strings.TrimSpace(token), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token in redis: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete token from redis: %w", err)
	}
	return nil
}
