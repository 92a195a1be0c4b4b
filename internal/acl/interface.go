package acl

import (
	"context"

	"calendar-share-bot/internal/model"
)

// Gateway issues calendar-sharing operations against Google Calendar on
// behalf of an authorized identity. Every operation obtains a fresh token
// from the Coordinator first; token freshness is never handled here.
type Gateway interface {
	// ListCalendars returns the calendars the identity owns, in API order.
	ListCalendars(ctx context.Context, identity int64) ([]model.CalendarInfo, error)

	// ListShares returns the non-owner grants on the calendar.
	ListShares(ctx context.Context, identity int64, calendarID string) ([]model.ShareGrant, error)

	// AddShare grants email the role on the calendar. Idempotent: granting
	// an already-shared email updates its role instead of duplicating.
	AddShare(ctx context.Context, identity int64, calendarID, email string, role model.Role) error

	// DeleteShare revokes email's access. Idempotent: a no-op when the
	// grantee was already absent.
	DeleteShare(ctx context.Context, identity int64, calendarID, email string) error
}
