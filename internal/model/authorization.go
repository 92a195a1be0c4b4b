package model

import "time"

// AuthStatus is the authorization lifecycle state of a chat identity.
type AuthStatus string

const (
	StatusUnauthorized AuthStatus = "unauthorized"
	StatusPendingGrant AuthStatus = "pending_grant"
	StatusAuthorized   AuthStatus = "authorized"
)

// AuthorizationState is the per-identity authorization record.
// Invariants: PendingNonce is set only while Status is pending_grant;
// tokens are either both present (authorized) or both empty.
type AuthorizationState struct {
	Identity      int64 // Telegram chat ID
	Status        AuthStatus
	PendingNonce  string
	NonceIssuedAt time.Time
	AccessToken   string
	RefreshToken  string
	TokenExpiry   time.Time
	UpdatedAt     time.Time
}

// HasTokens reports whether a full token pair is present.
func (s AuthorizationState) HasTokens() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}
