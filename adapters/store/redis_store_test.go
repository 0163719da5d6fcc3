package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/communa/backend/core"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, "communa:").(*RedisStore)
}

func TestRedisStore_SetGetWithTTL(t *testing.T) {
	mr, s := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "login:0xabc", "nonce", time.Minute))
	assert.True(t, mr.Exists("communa:login:0xabc"))
	assert.Equal(t, time.Minute, mr.TTL("communa:login:0xabc"))

	v, err := s.Get(ctx, "login:0xabc")
	require.NoError(t, err)
	assert.Equal(t, "nonce", v)

	mr.FastForward(time.Minute)
	_, err = s.Get(ctx, "login:0xabc")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRedisStore_ConnectionFailureIsNotNotFound(t *testing.T) {
	mr, s := newRedisStore(t)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNotFound)

	assert.Error(t, s.Set(context.Background(), "k", "v", time.Second))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = Connect(context.Background(), "://bad")
	assert.Error(t, err)
}
