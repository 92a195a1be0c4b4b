package authz

import "errors"

// Domain-specific errors for the authz package.
var (
	// ErrStoreUnavailable means a state write could not be confirmed durable.
	// The operation in progress must not be reported as completed.
	ErrStoreUnavailable = errors.New("authorization store unavailable")

	// ErrUnknownOrExpiredNonce covers replayed, tampered and stale callback
	// nonces. Terminal for the callback that carried it.
	ErrUnknownOrExpiredNonce = errors.New("unknown or expired authorization nonce")

	// ErrGrantExchangeFailed means the authorization server rejected the code.
	ErrGrantExchangeFailed = errors.New("authorization code exchange failed")

	// ErrNotAuthorized means the identity has no stored authorization.
	ErrNotAuthorized = errors.New("identity is not authorized")

	// ErrReauthorizationRequired means the stored refresh token no longer
	// works; the identity was downgraded and must authorize again.
	ErrReauthorizationRequired = errors.New("reauthorization required")
)
