package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"calendar-share-bot/internal/authz"
	"calendar-share-bot/internal/model"
)

// BeginAuthorization issues a fresh nonce, records the pending grant and
// returns the authorization URL. The URL is only handed out after the write
// is durable: an unrecorded nonce could never be matched by the callback.
func (c *implCoordinator) BeginAuthorization(ctx context.Context, identity int64) (string, error) {
	nonce := uuid.NewString()
	now := c.now()

	state := model.AuthorizationState{
		Identity:      identity,
		Status:        model.StatusPendingGrant,
		PendingNonce:  nonce,
		NonceIssuedAt: now,
		UpdatedAt:     now,
	}
	if err := c.store.Put(ctx, state); err != nil {
		c.l.Errorf(ctx, "authz: failed to persist pending grant for identity %d: %v", identity, err)
		return "", fmt.Errorf("%w: %v", authz.ErrStoreUnavailable, err)
	}

	// access_type=offline and prompt=consent make Google return a refresh
	// token even when the user granted access before.
	url := c.oauth.AuthCodeURL(nonce,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)

	c.l.Infof(ctx, "authz: authorization link issued for identity %d", identity)
	return url, nil
}
