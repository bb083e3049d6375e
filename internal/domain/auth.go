package domain

import (
	"context"
	"time"
)

// TokenSource supplies bearer tokens for control-plane requests.
type TokenSource interface {
	// GetAccessToken returns a token satisfying the freshness
	// invariant, refreshing synchronously if needed.
	GetAccessToken(ctx context.Context) (string, error)
	// Invalidate clears any cached token. Idempotent.
	Invalidate()
}

// AccessToken is a bearer token with its expiry. Replaced wholesale on
// refresh, never mutated in place.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// Usable reports whether the token is still fresh enough to attach to
// a request, given the expiry buffer.
func (t AccessToken) Usable(now time.Time, buffer time.Duration) bool {
	if t.Value == "" {
		return false
	}
	return now.Add(buffer).Before(t.ExpiresAt)
}
