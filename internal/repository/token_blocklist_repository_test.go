package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBlocklistDisabledWithoutClient(t *testing.T) {
	repo := NewTokenBlocklistRepository(nil)
	assert.False(t, repo.Enabled())

	require.NoError(t, repo.Revoke(context.Background(), "jti", time.Minute))
	revoked, err := repo.IsRevoked(context.Background(), "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenBlocklistSurfacesRedisErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	repo := NewTokenBlocklistRepository(client)

	assert.Error(t, repo.Revoke(context.Background(), "jti", time.Minute))
	_, err := repo.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)

	require.NoError(t, repo.Revoke(context.Background(), "jti", 0))
}
