package ports

import (
	"context"
	"time"
)

// NonceStore keeps short lived protocol state shared across server instances
type NonceStore interface {
	// Set stores value under key, replacing any previous value and expiry
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the stored value, or core.ErrNotFound when absent or expired
	Get(ctx context.Context, key string) (string, error)
}
