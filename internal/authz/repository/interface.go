package repository

import (
	"context"
	"errors"

	"calendar-share-bot/internal/model"
)

// ErrNotFound is returned when no state exists for the lookup key.
var ErrNotFound = errors.New("authorization state not found")

// Store persists per-identity authorization state.
// All operations are atomic with respect to a single identity row, and Put
// is a full-row upsert: partial field updates are not offered, which keeps
// concurrent writers at last-writer-wins granularity.
type Store interface {
	Get(ctx context.Context, identity int64) (model.AuthorizationState, error)

	// Put upserts the full record. It returns only after the write is
	// durable, so callers may report success to their own callers.
	Put(ctx context.Context, state model.AuthorizationState) error

	// FindByNonce resolves a pending-grant nonce to its identity's state.
	FindByNonce(ctx context.Context, nonce string) (model.AuthorizationState, error)
}
