package gcal

// Calendar API constants.
const (
	accessRoleOwner = "owner"
	scopeTypeUser   = "user"
)

// Calendar is a calendar descriptor from the user's calendar list.
type Calendar struct {
	ID      string
	Summary string
}

// Rule is a single calendar ACL entry.
type Rule struct {
	ID        string
	ScopeType string // "user", "group", "domain" or "default"
	Email     string // scope value; an email for user/group scopes
	Role      string
}
