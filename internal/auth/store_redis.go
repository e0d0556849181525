package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// revokedKeyPrefix namespaces revocation keys in a shared Redis instance.
const revokedKeyPrefix = "communityalert:revoked:"

// RedisTokenStore is a Redis-backed TokenStore for deployments with more than
// one API instance. Keys carry the token's remaining TTL, so Redis expires
// them in step with the tokens themselves.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore constructs a TokenStore on an existing Redis client.
// The client's lifecycle is managed by the caller.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

// Revoke marks jti revoked for ttl using an atomic set-with-expiry.
func (s *RedisTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("auth.RedisTokenStore.Revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti is revoked. A missing key means not revoked.
func (s *RedisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := s.client.Get(ctx, revokedKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("auth.RedisTokenStore.IsRevoked: %w", err)
	}
	return true, nil
}

var _ TokenStore = (*RedisTokenStore)(nil)
