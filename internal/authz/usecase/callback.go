package usecase

import (
	"context"
	"errors"
	"fmt"

	"calendar-share-bot/internal/authz"
	"calendar-share-bot/internal/authz/repository"
	"calendar-share-bot/internal/model"
)

// HandleCallback correlates the OAuth redirect to the identity that requested
// it and exchanges the authorization code for a token pair.
func (c *implCoordinator) HandleCallback(ctx context.Context, nonce, code string) (int64, error) {
	state, err := c.store.FindByNonce(ctx, nonce)
	if errors.Is(err, repository.ErrNotFound) {
		// Potential security event; replay and never-issued look the same to
		// the caller but are logged apart.
		if identity, replayed := c.consumed.Get(nonce); replayed {
			c.l.Warnf(ctx, "authz: replayed nonce for identity %d rejected", identity)
		} else {
			c.l.Warnf(ctx, "authz: callback with unknown nonce rejected")
		}
		return 0, authz.ErrUnknownOrExpiredNonce
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", authz.ErrStoreUnavailable, err)
	}

	now := c.now()

	// Consume the nonce before touching the authorization server. Whatever
	// happens next, this callback's nonce can never be accepted again.
	if err := c.store.Put(ctx, model.AuthorizationState{
		Identity:  state.Identity,
		Status:    model.StatusUnauthorized,
		UpdatedAt: now,
	}); err != nil {
		return 0, fmt.Errorf("%w: %v", authz.ErrStoreUnavailable, err)
	}
	c.consumed.Add(nonce, state.Identity)

	if now.Sub(state.NonceIssuedAt) > c.pendingTTL {
		c.l.Warnf(ctx, "authz: expired nonce for identity %d rejected", state.Identity)
		return state.Identity, authz.ErrUnknownOrExpiredNonce
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, c.exchangeTimeout)
	defer cancel()

	token, err := c.oauth.Exchange(exchangeCtx, code)
	if err != nil {
		c.l.Warnf(ctx, "authz: code exchange failed for identity %d: %v", state.Identity, err)
		return state.Identity, authz.ErrGrantExchangeFailed
	}
	if token.RefreshToken == "" {
		// A pair without a refresh token cannot be kept fresh; treat it as a
		// failed grant rather than persisting a partial token set.
		c.l.Warnf(ctx, "authz: exchange for identity %d returned no refresh token", state.Identity)
		return state.Identity, authz.ErrGrantExchangeFailed
	}

	authorized := model.AuthorizationState{
		Identity:     state.Identity,
		Status:       model.StatusAuthorized,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry.UTC(),
		UpdatedAt:    c.now(),
	}
	if err := c.store.Put(ctx, authorized); err != nil {
		c.l.Errorf(ctx, "authz: failed to persist tokens for identity %d: %v", state.Identity, err)
		return 0, fmt.Errorf("%w: %v", authz.ErrStoreUnavailable, err)
	}

	c.l.Infof(ctx, "authz: identity %d authorized", state.Identity)
	return state.Identity, nil
}
