package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openhaus/realtycrm/pkg/cache"
)

// TokenBlacklist stores revoked JWTs in Redis until they would have
// expired anyway. Tokens are stored hashed so the cache never holds a
// usable credential.
type TokenBlacklist struct {
	cache *cache.Client
}

// NewTokenBlacklist creates a token blacklist backed by the shared cache.
func NewTokenBlacklist(cache *cache.Client) *TokenBlacklist {
	return &TokenBlacklist{cache: cache}
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:blacklist:" + hex.EncodeToString(sum[:])
}

// Blacklist revokes a token for the given remaining lifetime.
func (b *TokenBlacklist) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing to revoke.
		return nil
	}
	return b.cache.Set(ctx, blacklistKey(token), "revoked", ttl)
}

// IsBlacklisted reports whether a token has been revoked.
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	_, err := b.cache.Get(ctx, blacklistKey(token))
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
