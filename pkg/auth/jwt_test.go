package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaus/realtycrm/pkg/cache"
)

const testSecret = "test-secret"

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT(42, "agent@example.com", testSecret, 1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "agent@example.com", claims.Email)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, "agent@example.com", testSecret, 1)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestTokenBlacklist(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cacheClient := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	blacklist := NewTokenBlacklist(cacheClient)
	ctx := context.Background()

	token, err := GenerateJWT(7, "agent@example.com", testSecret, 1)
	require.NoError(t, err)

	t.Run("valid before revocation", func(t *testing.T) {
		claims, err := ValidateJWTWithBlacklist(ctx, token, testSecret, blacklist)
		require.NoError(t, err)
		assert.Equal(t, 7, claims.UserID)
	})

	t.Run("rejected after revocation", func(t *testing.T) {
		require.NoError(t, blacklist.Blacklist(ctx, token, time.Hour))

		_, err := ValidateJWTWithBlacklist(ctx, token, testSecret, blacklist)
		assert.ErrorContains(t, err, "revoked")
	})

	t.Run("expired ttl is a no-op", func(t *testing.T) {
		other, err := GenerateJWT(8, "other@example.com", testSecret, 1)
		require.NoError(t, err)
		require.NoError(t, blacklist.Blacklist(ctx, other, 0))

		revoked, err := blacklist.IsBlacklisted(ctx, other)
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
