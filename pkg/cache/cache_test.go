package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGetDel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", []string{"a", "b"}, 0))

	var got []string
	require.True(t, m.Get(ctx, "k", &got))
	assert.Equal(t, []string{"a", "b"}, got)

	require.NoError(t, m.Del(ctx, "k"))
	assert.False(t, m.Get(ctx, "k", &got))
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", 1, time.Minute))

	var v int
	assert.True(t, m.Get(ctx, "k", &v))

	now = now.Add(2 * time.Minute)
	assert.False(t, m.Get(ctx, "k", &v))
}

func TestNilRedisIsNoop(t *testing.T) {
	ctx := context.Background()
	var r *Redis

	var v int
	assert.False(t, r.Get(ctx, "k", &v))
	assert.NoError(t, r.Set(ctx, "k", 1, time.Second))
	assert.NoError(t, r.Del(ctx, "k"))
	assert.NoError(t, r.Close())
}

func TestDialUnreachableRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r, err := Dial(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
	assert.Nil(t, r)
}
