package domain

import (
	"context"
	"time"
)

// InitialCount is the recitation target. A freshly provisioned or reset
// counter starts here and counts down to zero.
const InitialCount = 40000

// Counter tracks one user's remaining recitations. There is exactly one
// counter per account id and it is never deleted, only reset.
type Counter struct {
	UserID      string
	Count       int
	LastUpdated time.Time
	// StartedAt is stamped by the first decrement after a reset and feeds
	// the derived statistics. Nil until progress begins.
	StartedAt *time.Time
}

// Completed reports whether the counter has reached zero.
func (c *Counter) Completed() bool {
	return c.Count == 0
}

// CounterRepository defines persistence operations for counters.
type CounterRepository interface {
	Get(ctx context.Context, userID string) (*Counter, error)
	// Reset provisions or overwrites the counter back to InitialCount and
	// clears the first-progress timestamp.
	Reset(ctx context.Context, userID string) error
	// Decrement atomically lowers the count by one, guarded so the count
	// never goes below zero. It returns the counter after the operation
	// and whether this call performed the decrement (false means the
	// counter was already at zero and nothing changed).
	Decrement(ctx context.Context, userID string) (*Counter, bool, error)
}
