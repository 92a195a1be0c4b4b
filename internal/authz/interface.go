package authz

import "context"

// Coordinator drives the OAuth2 authorization lifecycle for chat identities.
// It is the single source of truth for token freshness: every caller that
// needs a Google access token must go through GetValidToken.
type Coordinator interface {
	// BeginAuthorization issues a new authorization URL for the identity and
	// records the pending grant. Any previous pending grant for the identity
	// is overwritten, invalidating its nonce.
	BeginAuthorization(ctx context.Context, identity int64) (string, error)

	// HandleCallback correlates an OAuth redirect back to the identity that
	// requested it via the nonce, exchanges the authorization code for
	// tokens and persists them. The nonce is single-use: it is invalidated
	// on lookup, before the code exchange. When the grant fails after the
	// nonce was correlated, the identity is still returned alongside the
	// error so the transport can notify the user.
	HandleCallback(ctx context.Context, nonce, code string) (int64, error)

	// GetValidToken returns a non-expired access token for the identity,
	// refreshing it first when it is within the safety skew of expiry.
	GetValidToken(ctx context.Context, identity int64) (string, error)

	// Revoke clears the identity's stored tokens, returning it to the
	// unauthorized state.
	Revoke(ctx context.Context, identity int64) error
}
