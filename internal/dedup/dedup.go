// Package dedup remembers booking submission keys so that a resubmitted
// form (double click, retry after a timeout) does not notify the venue
// twice.
package dedup

import (
	"context"
	"time"
)

// Store claims keys for a limited time and can remember a value for
// each claimed key.
type Store interface {
	// Claim returns true if the key was not held and is now claimed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a claim so the key can be used again.
	Release(ctx context.Context, key string) error
	Remember(ctx context.Context, key, value string, ttl time.Duration) error
	Recall(ctx context.Context, key string) (string, bool, error)
}
