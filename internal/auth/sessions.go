package auth

import (
	"context"
	"time"
)

// SessionStore maps opaque session tokens to user identifiers with a TTL.
//
// Expiry is enforced by the store itself: Get on an expired token behaves
// exactly like Get on a token that never existed. Delete must be visible to
// subsequent Get calls so a revoked token can never resolve again.
type SessionStore interface {
	// Put records token -> userID for the given duration.
	Put(ctx context.Context, token string, userID int64, ttl time.Duration) error

	// Get resolves a token. The second return is false when the token is
	// absent or expired.
	Get(ctx context.Context, token string) (int64, bool, error)

	// Delete removes a token immediately. Deleting an absent token is not
	// an error.
	Delete(ctx context.Context, token string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store.
	Close() error
}
