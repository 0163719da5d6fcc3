package store

import (
	"context"
	"testing"
	"time"

	"github.com/communa/backend/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMemoryStore_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := NewMemoryStoreWithClock(clock.now)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "login:0xabc", "n1", time.Minute))

	v, err := s.Get(ctx, "login:0xabc")
	require.NoError(t, err)
	assert.Equal(t, "n1", v)

	clock.advance(59 * time.Second)
	_, err = s.Get(ctx, "login:0xabc")
	require.NoError(t, err)

	clock.advance(time.Second)
	_, err = s.Get(ctx, "login:0xabc")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStore_SetOverwritesValueAndTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewMemoryStoreWithClock(clock.now)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "old", time.Minute))
	clock.advance(50 * time.Second)
	require.NoError(t, s.Set(ctx, "k", "new", time.Minute))
	clock.advance(50 * time.Second)

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestMemoryStore_MissingKey(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewMemoryStoreWithClock(clock.now)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", "1", time.Second))
	require.NoError(t, s.Set(ctx, "long", "2", time.Hour))
	clock.advance(time.Minute)

	assert.Equal(t, 1, s.Sweep())
	v, err := s.Get(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}
