package acl

import "errors"

// Domain-specific errors for the acl package.
var (
	// ErrCalendarNotFound means the calendar does not exist or is not visible.
	ErrCalendarNotFound = errors.New("calendar not found")

	// ErrGranteeInvalid means the remote service rejected the grantee address.
	ErrGranteeInvalid = errors.New("grantee address rejected by calendar service")

	// ErrRemoteUnavailable is transient: network failures, rate limits and
	// server errors. Eligible for bounded retry.
	ErrRemoteUnavailable = errors.New("calendar service unavailable")

	// ErrRemoteRejected is permanent: the request was understood and refused.
	ErrRemoteRejected = errors.New("calendar service rejected the request")
)
