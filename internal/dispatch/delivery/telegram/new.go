package telegram

import (
	"context"

	"github.com/gin-gonic/gin"

	"calendar-share-bot/internal/dispatch"
	pkgLog "calendar-share-bot/pkg/log"
	pkgTelegram "calendar-share-bot/pkg/telegram"
)

// Handler is the interface for the Telegram delivery handler.
type Handler interface {
	HandleWebhook(c *gin.Context)
	NotifyAuthorized(ctx context.Context, identity int64)
	NotifyAuthorizationFailed(ctx context.Context, identity int64)
}

// New creates a new Telegram delivery handler.
func New(l pkgLog.Logger, d dispatch.Dispatcher, bot *pkgTelegram.Bot) Handler {
	return &handler{
		l:   l,
		d:   d,
		bot: bot,
	}
}
