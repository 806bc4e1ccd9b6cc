package driven

import (
	"context"
	"time"
)

// DistributedLock coordinates batch runs across instances. Narrative
// detection assumes single-writer scheduling; the lock enforces it when
// more than one worker is deployed.
type DistributedLock interface {
	// Acquire attempts to acquire a named lock with the given TTL.
	// Returns true if acquired, false if already held elsewhere.
	// The lock expires automatically after TTL.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release releases a named lock. Best-effort: safe to call when the
	// lock is not held or has already expired.
	Release(ctx context.Context, name string) error

	// Extend extends the TTL of a currently held lock.
	// Returns an error if the lock is not held by this instance.
	Extend(ctx context.Context, name string, ttl time.Duration) error

	// Ping checks if the lock backend is healthy.
	Ping(ctx context.Context) error
}
