package telegram

import (
	"errors"
	"fmt"
	"strings"

	"calendar-share-bot/internal/acl"
	"calendar-share-bot/internal/authz"
	"calendar-share-bot/internal/dispatch"
	"calendar-share-bot/internal/model"
)

// Message catalogue. The dispatcher returns structured results; all
// user-facing text lives here so the transport owns its own wording.
const (
	msgHelp = `Google Calendar sharing bot

Commands:
/start - authorize the bot or list your calendars
/help - show this help
/show_calendars - list calendars you own
/show_share <calendar> - show who has access to a calendar
/add_share <calendar> <e-mail> <role> - grant e-mail access to a calendar
/delete_share <calendar> <e-mail> - revoke e-mail access to a calendar
/revoke_authz - revoke the bot's authorization to access Google Calendar`

	msgUnknown        = "Command is not registered. Send /help for the command list."
	msgAuthzURL       = "To authorize the bot in Google Calendar, please follow the link: %s"
	msgNeedsAuthz     = "You are not authorized yet. Send /start to get an authorization link."
	msgAuthComplete   = "Authorization completed successfully"
	msgAuthFailed     = "Calendar access was not granted"
	msgAuthzRevoked   = "Bot authorization revoked. Send /start to get a new authorization link."
	msgNoCalendars    = "You do not own any calendars"
	msgNoShares       = "Nobody else has access to calendar %s"
	msgShareAdded     = "User %s was granted '%s' access to calendar %s"
	msgShareDeleted   = "Revoked access of user %s to calendar %s"
	msgCalendarMissed = "Calendar not found"
	msgGranteeInvalid = "Google Calendar rejected that e-mail address"
	msgRemoteDown     = "Google Calendar is temporarily unavailable, please try again later"
	msgRemoteRejected = "Google Calendar rejected the request"
	msgInternalError  = "Something went wrong while handling your request. Please try again."
)

// roleLabels maps API role values to the wording used in replies.
var roleLabels = map[model.Role]string{
	model.RoleFreeBusyReader: "free/busy only",
	model.RoleReader:         "read",
	model.RoleWriter:         "write",
}

func renderResult(res dispatch.Result) string {
	switch res.Kind {
	case dispatch.ResultHelp:
		return msgHelp

	case dispatch.ResultAuthorizationLink:
		return fmt.Sprintf(msgAuthzURL, res.AuthorizationURL)

	case dispatch.ResultNeedsAuthorization:
		return msgNeedsAuthz

	case dispatch.ResultCalendarList:
		if len(res.Calendars) == 0 {
			return msgNoCalendars
		}
		var b strings.Builder
		b.WriteString("Your calendars:\n")
		for _, cal := range res.Calendars {
			fmt.Fprintf(&b, "%s (%s)\n", cal.Summary, cal.ID)
		}
		return strings.TrimRight(b.String(), "\n")

	case dispatch.ResultShareList:
		if len(res.Shares) == 0 {
			return fmt.Sprintf(msgNoShares, res.Calendar)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Access to calendar %s:\n", res.Calendar)
		for _, share := range res.Shares {
			fmt.Fprintf(&b, "%s: %s\n", share.Email, roleLabel(share.Role))
		}
		return strings.TrimRight(b.String(), "\n")

	case dispatch.ResultShareAdded:
		return fmt.Sprintf(msgShareAdded, res.Email, roleLabel(res.Role), res.Calendar)

	case dispatch.ResultShareDeleted:
		return fmt.Sprintf(msgShareDeleted, res.Email, res.Calendar)

	case dispatch.ResultAuthorizationRevoked:
		return msgAuthzRevoked

	default:
		return msgInternalError
	}
}

func renderParseError(err error) string {
	switch {
	case errors.Is(err, dispatch.ErrUnknownCommand):
		return msgUnknown
	case errors.Is(err, dispatch.ErrInvalidArguments):
		return fmt.Sprintf("Invalid command: %v. Send /help for usage.", err)
	default:
		return msgInternalError
	}
}

func renderDispatchError(err error) string {
	switch {
	case errors.Is(err, authz.ErrNotAuthorized),
		errors.Is(err, authz.ErrReauthorizationRequired):
		return msgNeedsAuthz
	case errors.Is(err, acl.ErrCalendarNotFound):
		return msgCalendarMissed
	case errors.Is(err, acl.ErrGranteeInvalid):
		return msgGranteeInvalid
	case errors.Is(err, acl.ErrRemoteUnavailable):
		return msgRemoteDown
	case errors.Is(err, acl.ErrRemoteRejected):
		return msgRemoteRejected
	default:
		return msgInternalError
	}
}

func roleLabel(role model.Role) string {
	if label, ok := roleLabels[role]; ok {
		return label
	}
	return string(role)
}
