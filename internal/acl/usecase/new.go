package usecase

import (
	"time"

	"calendar-share-bot/internal/acl"
	"calendar-share-bot/internal/authz"
	"calendar-share-bot/pkg/gcal"
	pkgLog "calendar-share-bot/pkg/log"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
)

// Ensure implGateway implements the Gateway interface
var _ acl.Gateway = (*implGateway)(nil)

type implGateway struct {
	l      pkgLog.Logger
	coord  authz.Coordinator
	client *gcal.Client

	retryAttempts int
	retryDelay    time.Duration
}

// Config tunes the gateway's retry policy for transient remote failures.
type Config struct {
	RetryAttempts int
	RetryDelay    time.Duration
}

// New creates a new Calendar ACL gateway.
func New(l pkgLog.Logger, coord authz.Coordinator, client *gcal.Client, cfg Config) *implGateway {
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	return &implGateway{
		l:             l,
		coord:         coord,
		client:        client,
		retryAttempts: attempts,
		retryDelay:    delay,
	}
}
