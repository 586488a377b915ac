package redis

import (
	"context"
	"time"
)

// Locker is a best-effort mutual exclusion on a Redis key.
type Locker struct{}

func NewLocker() *Locker { return &Locker{} }

// Acquire sets key if absent and reports whether this caller now holds it.
func (Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return SetNX(ctx, key, "1", ttl)
}

// Release drops the key.
func (Locker) Release(ctx context.Context, key string) error {
	return Del(ctx, key)
}
