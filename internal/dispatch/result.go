package dispatch

import "calendar-share-bot/internal/model"

// ResultKind enumerates the outcomes a dispatched command can produce.
// The transport renders these; the dispatcher never formats user-facing text.
type ResultKind int

const (
	// ResultAuthorizationLink carries a fresh authorization URL.
	ResultAuthorizationLink ResultKind = iota
	// ResultNeedsAuthorization prompts the user to authorize before the
	// requested operation; no authorization link was issued.
	ResultNeedsAuthorization
	// ResultHelp asks the transport to render its help text.
	ResultHelp
	// ResultCalendarList carries the identity's owned calendars.
	ResultCalendarList
	// ResultShareList carries the grants on one calendar.
	ResultShareList
	// ResultShareAdded confirms a committed grant.
	ResultShareAdded
	// ResultShareDeleted confirms a committed revocation (or no-op).
	ResultShareDeleted
	// ResultAuthorizationRevoked confirms the bot's access was revoked.
	ResultAuthorizationRevoked
)

// Result is the outcome descriptor handed back to the transport.
type Result struct {
	Kind ResultKind

	AuthorizationURL string
	Calendars        []model.CalendarInfo
	Shares           []model.ShareGrant

	// Echoes of the command arguments, for confirmation rendering.
	Calendar string
	Email    string
	Role     model.Role
}
