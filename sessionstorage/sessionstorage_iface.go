// Package sessionstorage implements durable storage for the dashboard's
// session record. There are implementations for in-memory state, an
// encrypted state file, and Redis, so hosts can pick where the signed-in
// session survives between page loads and process restarts.
package sessionstorage

import (
	"context"
)

var (
	_ Store = (*Memory)(nil)
	_ Store = (*File)(nil)
	_ Store = (*Redis)(nil)
)

// Store defines a driver for the persisted session record and the pending
// post-login redirect path.
type Store interface {
	// Load returns the persisted record, or nil when none is stored. An
	// unreadable record returns sessiontypes.ErrMalformedState.
	Load(ctx context.Context) (*Record, error)

	// Save persists the record as one atomic write, so the identity and its
	// token pair can never be observed apart.
	Save(ctx context.Context, record *Record) error

	// Clear removes the record and the pending redirect path.
	Clear(ctx context.Context) error

	// SetPendingPath stores the destination to return to after sign-in,
	// replacing any previous one.
	SetPendingPath(ctx context.Context, path string) error

	// ConsumePendingPath returns the stored destination and deletes it in
	// the same step. It returns "" when none is stored.
	ConsumePendingPath(ctx context.Context) (string, error)
}
