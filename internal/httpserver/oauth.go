package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"calendar-share-bot/internal/authz"
)

// Browser-facing pages for the OAuth redirect. The user lands here from
// Google's consent screen; the real outcome is reported back in the chat.
const (
	pageAuthorized = `<!DOCTYPE html>
<html><head><title>Authorization complete</title></head>
<body><p>Authorization complete. You can return to the chat.</p>
<script>window.close();</script></body></html>`

	pageDenied = `<!DOCTYPE html>
<html><head><title>Authorization declined</title></head>
<body><p>Calendar access was not granted. You can return to the chat.</p></body></html>`

	pageExpired = `<!DOCTYPE html>
<html><head><title>Link expired</title></head>
<body><p>This authorization link is no longer valid. Request a new one in the chat.</p></body></html>`

	pageFailed = `<!DOCTYPE html>
<html><head><title>Authorization failed</title></head>
<body><p>Authorization could not be completed. Request a new link in the chat.</p></body></html>`
)

// handleOAuthCallback terminates the OAuth2 redirect. The state query
// parameter is the nonce that correlates the redirect to a chat identity.
// The endpoint is rate limited per source IP: it is the only unauthenticated
// surface that reaches the store.
func (srv HTTPServer) handleOAuthCallback(c *gin.Context) {
	ctx := c.Request.Context()

	if err := srv.callbackLimiter.Allow(clientIP(c.Request)); err != nil {
		srv.l.Warnf(ctx, "oauth callback: %v", err)
		c.String(http.StatusTooManyRequests, "too many requests")
		return
	}

	state := c.Query("state")
	if state == "" {
		c.String(http.StatusBadRequest, "missing state parameter")
		return
	}

	code := c.Query("code")
	if denial := c.Query("error"); denial != "" || code == "" {
		// The user declined on the consent screen. The nonce is still
		// consumed so the link cannot be retried later.
		srv.l.Warnf(ctx, "oauth callback: grant denied (%s)", denial)
		identity, _ := srv.coordinator.HandleCallback(ctx, state, "")
		srv.notifyFailed(c, identity)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(pageDenied))
		return
	}

	identity, err := srv.coordinator.HandleCallback(ctx, state, code)
	switch {
	case err == nil:
		if srv.telegramHandler != nil {
			srv.telegramHandler.NotifyAuthorized(ctx, identity)
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(pageAuthorized))

	case errors.Is(err, authz.ErrUnknownOrExpiredNonce):
		srv.notifyFailed(c, identity)
		c.Data(http.StatusGone, "text/html; charset=utf-8", []byte(pageExpired))

	case errors.Is(err, authz.ErrGrantExchangeFailed):
		srv.notifyFailed(c, identity)
		c.Data(http.StatusBadGateway, "text/html; charset=utf-8", []byte(pageFailed))

	default:
		srv.l.Errorf(ctx, "oauth callback: %v", err)
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(pageFailed))
	}
}

// notifyFailed pushes a failure notice to the chat when the nonce was
// correlated far enough to know which identity it belonged to.
func (srv HTTPServer) notifyFailed(c *gin.Context, identity int64) {
	if identity != 0 && srv.telegramHandler != nil {
		srv.telegramHandler.NotifyAuthorizationFailed(c.Request.Context(), identity)
	}
}
