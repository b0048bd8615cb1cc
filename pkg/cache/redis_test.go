package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a test Redis client using miniredis
func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := &Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	return client, mr
}

func TestClient_SetGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()

	err := client.Set(ctx, "leads:1:score", "145", 1*time.Hour)
	require.NoError(t, err)

	val, err := client.Get(ctx, "leads:1:score")
	require.NoError(t, err)
	assert.Equal(t, "145", val)
}

func TestClient_GetMissing(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	_, err := client.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestClient_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()

	_ = client.Set(ctx, "dashboard:summary", "{}", 1*time.Hour)
	_ = client.Set(ctx, "dashboard:activity", "[]", 1*time.Hour)

	err := client.Delete(ctx, "dashboard:summary")
	require.NoError(t, err)

	_, err = client.Get(ctx, "dashboard:summary")
	assert.Error(t, err)

	val, err := client.Get(ctx, "dashboard:activity")
	require.NoError(t, err)
	assert.Equal(t, "[]", val)
}

func TestClient_DeletePattern(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()

	_ = client.Set(ctx, "dashboard:summary", "a", 1*time.Hour)
	_ = client.Set(ctx, "dashboard:activity", "b", 1*time.Hour)
	_ = client.Set(ctx, "auth:blacklist:tok", "c", 1*time.Hour)

	err := client.DeletePattern(ctx, "dashboard:*")
	require.NoError(t, err)

	exists, err := client.Exists(ctx, "dashboard:summary")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = client.Exists(ctx, "auth:blacklist:tok")
	require.NoError(t, err)
	assert.True(t, exists)
}
