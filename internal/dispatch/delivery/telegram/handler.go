package telegram

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"calendar-share-bot/internal/dispatch"
	pkgLog "calendar-share-bot/pkg/log"
	pkgResponse "calendar-share-bot/pkg/response"
	pkgTelegram "calendar-share-bot/pkg/telegram"
)

type handler struct {
	l   pkgLog.Logger
	d   dispatch.Dispatcher
	bot *pkgTelegram.Bot
}

// HandleWebhook is the Gin handler for incoming Telegram webhook updates.
// It responds with HTTP 200 immediately and processes the message in a
// background goroutine so a slow Google API round trip never trips the
// Telegram webhook timeout.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	var update pkgTelegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to parse update: %v", err)
		pkgResponse.Error(c, err, nil)
		return
	}

	// Ignore non-message updates (polls, channel_post, etc.)
	if update.Message == nil || update.Message.Chat == nil {
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}

	// Snapshot the message before spawning goroutine to avoid data races on gin context
	msg := update.Message

	go func() {
		// Detach from HTTP request context (which gets cancelled after response)
		bgCtx := context.Background()
		if err := h.processMessage(bgCtx, msg); err != nil {
			h.l.Errorf(bgCtx, "telegram handler: background processMessage failed: %v", err)
			_ = h.bot.SendMessage(msg.Chat.ID, msgInternalError)
		}
	}()

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

// processMessage handles a single Telegram message. The chat ID is the
// identity key for authorization state and command routing.
func (h *handler) processMessage(ctx context.Context, msg *pkgTelegram.Message) error {
	name, args, ok := splitCommand(msg.Text)
	if !ok {
		// Plain text outside a command; nothing to do.
		return nil
	}

	cmd, err := dispatch.Parse(name, args)
	if err != nil {
		return h.bot.SendMessage(msg.Chat.ID, renderParseError(err))
	}

	res, err := h.d.Dispatch(ctx, msg.Chat.ID, cmd)
	if err != nil {
		h.l.Errorf(ctx, "telegram handler: dispatch %q for chat %d failed: %v", name, msg.Chat.ID, err)
		return h.bot.SendMessage(msg.Chat.ID, renderDispatchError(err))
	}

	return h.bot.SendMessage(msg.Chat.ID, renderResult(res))
}

// NotifyAuthorized tells the chat its authorization grant completed.
// Called from the OAuth2 callback path, outside any webhook update.
func (h *handler) NotifyAuthorized(ctx context.Context, identity int64) {
	if err := h.bot.SendMessage(identity, msgAuthComplete); err != nil {
		h.l.Warnf(ctx, "telegram handler: failed to notify chat %d of completed authorization: %v", identity, err)
	}
}

// NotifyAuthorizationFailed tells the chat its grant attempt did not complete.
func (h *handler) NotifyAuthorizationFailed(ctx context.Context, identity int64) {
	if err := h.bot.SendMessage(identity, msgAuthFailed); err != nil {
		h.l.Warnf(ctx, "telegram handler: failed to notify chat %d of failed authorization: %v", identity, err)
	}
}

// splitCommand parses "/name arg arg" into its parts. The bot-mention
// suffix ("/start@gcalbot") is stripped so group chats work too.
func splitCommand(text string) (name string, args []string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}

	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", nil, false
	}

	name = fields[0]
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return name, fields[1:], true
}
