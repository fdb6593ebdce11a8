package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const blocklistPrefix = "schooldb:revoked:"

// TokenBlocklistRepository records revoked access token ids in Redis until
// the token would have expired anyway. A nil client disables the blocklist.
type TokenBlocklistRepository struct {
	client *redis.Client
}

// NewTokenBlocklistRepository constructs the blocklist.
func NewTokenBlocklistRepository(client *redis.Client) *TokenBlocklistRepository {
	return &TokenBlocklistRepository{client: client}
}

// Enabled reports whether revocations are persisted.
func (r *TokenBlocklistRepository) Enabled() bool {
	return r != nil && r.client != nil
}

// Revoke blocks the token id for ttl.
func (r *TokenBlocklistRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if !r.Enabled() || tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, blocklistPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke %s: %w", tokenID, err)
	}
	return nil
}

// IsRevoked reports whether the token id has been revoked.
func (r *TokenBlocklistRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !r.Enabled() || tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, blocklistPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redis check %s: %w", tokenID, err)
	}
	return n > 0, nil
}
