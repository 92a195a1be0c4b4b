package httpserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	"calendar-share-bot/internal/authz"
	tgDelivery "calendar-share-bot/internal/dispatch/delivery/telegram"
	"calendar-share-bot/pkg/log"
)

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	// Server
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string

	// Telegram webhook delivery
	telegramHandler tgDelivery.Handler

	// OAuth2 redirect endpoint
	coordinator     authz.Coordinator
	callbackLimiter *callbackRateLimiter
}

// Config is the dependency bag passed to New().
type Config struct {
	Logger      log.Logger
	Port        int
	Mode        string
	Environment string

	TelegramHandler tgDelivery.Handler
	Coordinator     authz.Coordinator

	// Requests per minute allowed per source IP on the OAuth callback.
	CallbackRateLimitPerMin int
}

// New creates a new HTTPServer instance.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	if cfg.CallbackRateLimitPerMin <= 0 {
		cfg.CallbackRateLimitPerMin = 60
	}

	srv := &HTTPServer{
		l:               logger,
		gin:             gin.Default(),
		port:            cfg.Port,
		mode:            cfg.Mode,
		environment:     cfg.Environment,
		telegramHandler: cfg.TelegramHandler,
		coordinator:     cfg.Coordinator,
		callbackLimiter: newCallbackRateLimiter(cfg.CallbackRateLimitPerMin),
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (srv HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	return nil
}
