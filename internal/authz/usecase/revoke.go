package usecase

import (
	"context"
	"fmt"

	"calendar-share-bot/internal/authz"
	"calendar-share-bot/internal/model"
)

// Revoke clears the identity's stored authorization. The record itself is
// kept; identities are never deleted, only updated.
func (c *implCoordinator) Revoke(ctx context.Context, identity int64) error {
	if err := c.store.Put(ctx, model.AuthorizationState{
		Identity:  identity,
		Status:    model.StatusUnauthorized,
		UpdatedAt: c.now(),
	}); err != nil {
		return fmt.Errorf("%w: %v", authz.ErrStoreUnavailable, err)
	}

	c.l.Infof(ctx, "authz: authorization revoked for identity %d", identity)
	return nil
}
