package cache

import (
	"context"
	"time"
)

// Layered is a two-level cache (L1: process memory, L2: shared store).
// Writes go to L2 first; L2 hits are copied into L1 for l1TTL.
type Layered struct {
	l1    BytesCache
	l2    BytesCache
	l1TTL time.Duration
}

// NewLayered keeps L1 copies of L2 hits for at most l1TTL (0 = no expiry).
func NewLayered(l1, l2 BytesCache, l1TTL time.Duration) *Layered {
	return &Layered{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (c *Layered) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, err := c.l1.GetBytes(ctx, key); err == nil && ok {
		return b, true, nil
	}
	b, ok, err := c.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = c.l1.SetBytes(ctx, key, b, c.l1TTL)
	return b, true, nil
}

func (c *Layered) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := ttl
	if c.l1TTL > 0 && (l1TTL <= 0 || c.l1TTL < l1TTL) {
		l1TTL = c.l1TTL
	}
	return c.l1.SetBytes(ctx, key, value, l1TTL)
}

var _ BytesCache = (*Layered)(nil)
