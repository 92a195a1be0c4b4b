package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"

	"calendar-share-bot/internal/authz"
	"calendar-share-bot/internal/authz/repository"
	"calendar-share-bot/internal/model"
)

// GetValidToken returns a non-expired access token for the identity.
// Refresh is serialized per identity: concurrent commands from the same user
// share one refresh round-trip instead of racing the authorization server.
func (c *implCoordinator) GetValidToken(ctx context.Context, identity int64) (string, error) {
	v, err, _ := c.refreshGroup.Do(strconv.FormatInt(identity, 10), func() (interface{}, error) {
		return c.validToken(ctx, identity)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *implCoordinator) validToken(ctx context.Context, identity int64) (string, error) {
	state, err := c.store.Get(ctx, identity)
	if errors.Is(err, repository.ErrNotFound) {
		return "", authz.ErrNotAuthorized
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", authz.ErrStoreUnavailable, err)
	}
	if state.Status != model.StatusAuthorized || !state.HasTokens() {
		return "", authz.ErrNotAuthorized
	}

	now := c.now()
	if state.TokenExpiry.After(now.Add(c.refreshSkew)) {
		return state.AccessToken, nil
	}

	refreshCtx, cancel := context.WithTimeout(ctx, c.exchangeTimeout)
	defer cancel()

	source := c.oauth.TokenSource(refreshCtx, &oauth2.Token{RefreshToken: state.RefreshToken})
	token, err := source.Token()
	if err != nil {
		// A rejected refresh token is never retried as-is: downgrade and
		// make the user authorize again.
		c.l.Warnf(ctx, "authz: token refresh failed for identity %d: %v", identity, err)
		if putErr := c.store.Put(ctx, model.AuthorizationState{
			Identity:  identity,
			Status:    model.StatusUnauthorized,
			UpdatedAt: c.now(),
		}); putErr != nil {
			return "", fmt.Errorf("%w: %v", authz.ErrStoreUnavailable, putErr)
		}
		return "", authz.ErrReauthorizationRequired
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		// Google usually omits the refresh token on refresh responses.
		refreshToken = state.RefreshToken
	}

	refreshed := model.AuthorizationState{
		Identity:     identity,
		Status:       model.StatusAuthorized,
		AccessToken:  token.AccessToken,
		RefreshToken: refreshToken,
		TokenExpiry:  token.Expiry.UTC(),
		UpdatedAt:    c.now(),
	}
	if err := c.store.Put(ctx, refreshed); err != nil {
		// An unpersisted token must not be handed out: a restart would lose
		// the pair the remote service now considers current.
		return "", fmt.Errorf("%w: %v", authz.ErrStoreUnavailable, err)
	}

	c.l.Infof(ctx, "authz: token refreshed for identity %d", identity)
	return token.AccessToken, nil
}
