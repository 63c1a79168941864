package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTTLCache(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache(0)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	_, ok, err := c.GetBytes(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("f"), 0))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), b)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes(ctx, "k")
	require.False(t, ok)
	_, ok, _ = c.GetBytes(ctx, "forever")
	require.True(t, ok)
}

func TestTTLCache_Bounded(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache(2)

	require.NoError(t, c.SetBytes(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "c", []byte("3"), time.Minute))
	require.Equal(t, 2, c.Len())

	_, ok, _ := c.GetBytes(ctx, "c")
	require.True(t, ok)

	require.NoError(t, c.SetBytes(ctx, "c", []byte("4"), time.Minute))
	require.Equal(t, 2, c.Len())
}
