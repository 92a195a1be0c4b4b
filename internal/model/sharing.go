package model

// Role is a Google Calendar ACL access role grantable through the bot.
type Role string

const (
	RoleFreeBusyReader Role = "freeBusyReader"
	RoleReader         Role = "reader"
	RoleWriter         Role = "writer"
)

// ValidRole reports whether r is one of the grantable roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleFreeBusyReader, RoleReader, RoleWriter:
		return true
	}
	return false
}

// CalendarInfo describes a calendar owned by the authorized user.
type CalendarInfo struct {
	ID      string
	Summary string
}

// ShareGrant is a remotely-owned ACL entry (calendar, grantee, role).
// These live in Google Calendar; the bot never caches them across requests.
type ShareGrant struct {
	CalendarID string
	Email      string
	Role       Role
}
