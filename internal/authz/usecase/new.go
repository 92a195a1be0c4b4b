package usecase

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/calendar/v3"

	"calendar-share-bot/internal/authz"
	"calendar-share-bot/internal/authz/repository"
	pkgLog "calendar-share-bot/pkg/log"
)

// Ensure implCoordinator implements the Coordinator interface
var _ authz.Coordinator = (*implCoordinator)(nil)

const (
	defaultPendingGrantTTL = 10 * time.Minute
	defaultRefreshSkew     = 60 * time.Second
	defaultExchangeTimeout = 10 * time.Second

	// Capacity of the consumed-nonce log used to tell replays apart from
	// never-issued nonces in the security log.
	consumedNonceCapacity = 1024
)

// Config holds the OAuth2 client settings injected at construction.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// AuthURL/TokenURL override the Google endpoints (tests). Both or neither.
	AuthURL  string
	TokenURL string

	// PendingGrantTTL bounds how long an issued nonce stays valid (default 10m).
	PendingGrantTTL time.Duration
	// RefreshSkew refreshes tokens this long before their real expiry (default 60s).
	RefreshSkew time.Duration
	// ExchangeTimeout bounds outbound calls to the authorization server (default 10s).
	ExchangeTimeout time.Duration
}

type implCoordinator struct {
	l     pkgLog.Logger
	store repository.Store
	oauth *oauth2.Config

	pendingTTL      time.Duration
	refreshSkew     time.Duration
	exchangeTimeout time.Duration

	now func() time.Time

	// refreshGroup serializes token refresh per identity so concurrent
	// commands from one user cannot race duplicate refresh requests.
	refreshGroup singleflight.Group

	// consumed remembers recently used nonces; entries expire with the
	// pending-grant TTL since older replays are indistinguishable from
	// never-issued nonces anyway.
	consumed *expirable.LRU[string, int64]
}

// New creates a new OAuth2 coordinator.
func New(l pkgLog.Logger, store repository.Store, cfg Config) *implCoordinator {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" && cfg.TokenURL != "" {
		endpoint = oauth2.Endpoint{AuthURL: cfg.AuthURL, TokenURL: cfg.TokenURL}
	}

	pendingTTL := cfg.PendingGrantTTL
	if pendingTTL <= 0 {
		pendingTTL = defaultPendingGrantTTL
	}
	refreshSkew := cfg.RefreshSkew
	if refreshSkew <= 0 {
		refreshSkew = defaultRefreshSkew
	}
	exchangeTimeout := cfg.ExchangeTimeout
	if exchangeTimeout <= 0 {
		exchangeTimeout = defaultExchangeTimeout
	}

	return &implCoordinator{
		l:     l,
		store: store,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{calendar.CalendarScope},
		},
		pendingTTL:      pendingTTL,
		refreshSkew:     refreshSkew,
		exchangeTimeout: exchangeTimeout,
		now:             time.Now,
		consumed:        expirable.NewLRU[string, int64](consumedNonceCapacity, nil, pendingTTL),
	}
}
