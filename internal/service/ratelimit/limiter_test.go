package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiter_Allow(t *testing.T) {
	l := New(2, 1)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("a"))
	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
	require.True(t, l.Allow("b"), "keys are independent")

	now = now.Add(time.Second)
	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("x"))
	}
}

func TestLimiter_SweepsIdleKeys(t *testing.T) {
	l := New(2, 1)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("idle"))
	now = now.Add(2 * time.Minute)
	require.True(t, l.Allow("fresh"))
	require.Equal(t, 1, l.Keys())
}
