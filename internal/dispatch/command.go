package dispatch

import (
	"fmt"
	"net/mail"
	"strings"

	"calendar-share-bot/internal/model"
)

// CommandKind enumerates every command the bot understands. The set is
// closed: Dispatch matches it exhaustively, so adding a command is a
// compile-time-checked change.
type CommandKind int

const (
	KindStart CommandKind = iota
	KindHelp
	KindShowCalendars
	KindShowShare
	KindAddShare
	KindDeleteShare
	KindRevoke
)

// Command is a validated inbound command with its arguments.
type Command struct {
	Kind     CommandKind
	Calendar string
	Email    string
	Role     model.Role
}

// Command names as they arrive from the chat transport.
const (
	nameStart         = "start"
	nameHelp          = "help"
	nameShowCalendars = "show_calendars"
	nameShowShare     = "show_share"
	nameAddShare      = "add_share"
	nameDeleteShare   = "delete_share"
	nameRevoke        = "revoke_authz"
)

// Parse validates a raw (name, args) pair into a Command.
// Validation failures carry no side effects; the caller renders them as-is.
func Parse(name string, args []string) (Command, error) {
	switch strings.ToLower(name) {
	case nameStart:
		if len(args) != 0 {
			return Command{}, arityError(0)
		}
		return Command{Kind: KindStart}, nil

	case nameHelp:
		return Command{Kind: KindHelp}, nil

	case nameShowCalendars:
		if len(args) != 0 {
			return Command{}, arityError(0)
		}
		return Command{Kind: KindShowCalendars}, nil

	case nameShowShare:
		if len(args) != 1 {
			return Command{}, arityError(1)
		}
		return Command{Kind: KindShowShare, Calendar: args[0]}, nil

	case nameAddShare:
		if len(args) != 3 {
			return Command{}, arityError(3)
		}
		if err := validateEmail(args[1]); err != nil {
			return Command{}, err
		}
		role := model.Role(args[2])
		if !model.ValidRole(role) {
			return Command{}, fmt.Errorf("%w: role must be one of %s, %s, %s",
				ErrInvalidArguments, model.RoleFreeBusyReader, model.RoleReader, model.RoleWriter)
		}
		return Command{Kind: KindAddShare, Calendar: args[0], Email: args[1], Role: role}, nil

	case nameDeleteShare:
		if len(args) != 2 {
			return Command{}, arityError(2)
		}
		if err := validateEmail(args[1]); err != nil {
			return Command{}, err
		}
		return Command{Kind: KindDeleteShare, Calendar: args[0], Email: args[1]}, nil

	case nameRevoke:
		if len(args) != 0 {
			return Command{}, arityError(0)
		}
		return Command{Kind: KindRevoke}, nil

	default:
		return Command{}, ErrUnknownCommand
	}
}

func arityError(want int) error {
	return fmt.Errorf("%w: expected %d argument(s)", ErrInvalidArguments, want)
}

func validateEmail(addr string) error {
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return fmt.Errorf("%w: %q is not a valid email address", ErrInvalidArguments, addr)
	}
	return nil
}
