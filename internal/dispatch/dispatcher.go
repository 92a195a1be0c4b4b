package dispatch

import (
	"context"
	"errors"

	"calendar-share-bot/internal/acl"
	"calendar-share-bot/internal/authz"
	"calendar-share-bot/internal/authz/repository"
	"calendar-share-bot/internal/model"
	pkgLog "calendar-share-bot/pkg/log"
)

// Dispatcher routes validated commands to the coordinator or the gateway.
// It is stateless between invocations; all state lives in the store.
type Dispatcher interface {
	Dispatch(ctx context.Context, identity int64, cmd Command) (Result, error)
}

// Ensure implDispatcher implements the Dispatcher interface
var _ Dispatcher = (*implDispatcher)(nil)

type implDispatcher struct {
	l       pkgLog.Logger
	store   repository.Store
	coord   authz.Coordinator
	gateway acl.Gateway
}

// New creates a new command dispatcher.
func New(l pkgLog.Logger, store repository.Store, coord authz.Coordinator, gateway acl.Gateway) *implDispatcher {
	return &implDispatcher{
		l:       l,
		store:   store,
		coord:   coord,
		gateway: gateway,
	}
}

// Dispatch executes cmd for identity. ACL commands are short-circuited with
// a prompt when the identity is plainly unauthorized; the authoritative
// check still happens inside GetValidToken on every gateway call.
func (d *implDispatcher) Dispatch(ctx context.Context, identity int64, cmd Command) (Result, error) {
	switch cmd.Kind {
	case KindHelp:
		return Result{Kind: ResultHelp}, nil

	case KindStart:
		if d.authorized(ctx, identity) {
			return d.listCalendars(ctx, identity)
		}
		return d.beginAuthorization(ctx, identity)

	case KindShowCalendars:
		if !d.authorized(ctx, identity) {
			return Result{Kind: ResultNeedsAuthorization}, nil
		}
		return d.listCalendars(ctx, identity)

	case KindShowShare:
		if !d.authorized(ctx, identity) {
			return Result{Kind: ResultNeedsAuthorization}, nil
		}
		shares, err := d.gateway.ListShares(ctx, identity, cmd.Calendar)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultShareList, Calendar: cmd.Calendar, Shares: shares}, nil

	case KindAddShare:
		if !d.authorized(ctx, identity) {
			return Result{Kind: ResultNeedsAuthorization}, nil
		}
		if err := d.gateway.AddShare(ctx, identity, cmd.Calendar, cmd.Email, cmd.Role); err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultShareAdded, Calendar: cmd.Calendar, Email: cmd.Email, Role: cmd.Role}, nil

	case KindDeleteShare:
		if !d.authorized(ctx, identity) {
			return Result{Kind: ResultNeedsAuthorization}, nil
		}
		if err := d.gateway.DeleteShare(ctx, identity, cmd.Calendar, cmd.Email); err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultShareDeleted, Calendar: cmd.Calendar, Email: cmd.Email}, nil

	case KindRevoke:
		if err := d.coord.Revoke(ctx, identity); err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultAuthorizationRevoked}, nil

	default:
		return Result{}, ErrUnknownCommand
	}
}

func (d *implDispatcher) beginAuthorization(ctx context.Context, identity int64) (Result, error) {
	url, err := d.coord.BeginAuthorization(ctx, identity)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: ResultAuthorizationLink, AuthorizationURL: url}, nil
}

func (d *implDispatcher) listCalendars(ctx context.Context, identity int64) (Result, error) {
	calendars, err := d.gateway.ListCalendars(ctx, identity)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: ResultCalendarList, Calendars: calendars}, nil
}

// authorized is the cheap pre-check; an absent record counts as unauthorized.
func (d *implDispatcher) authorized(ctx context.Context, identity int64) bool {
	state, err := d.store.Get(ctx, identity)
	if errors.Is(err, repository.ErrNotFound) {
		return false
	}
	if err != nil {
		d.l.Warnf(ctx, "dispatch: status read failed for identity %d: %v", identity, err)
		return false
	}
	return state.Status == model.StatusAuthorized
}
