package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"

	"calendar-share-bot/internal/acl"
)

// classify maps a raw Calendar API error onto the gateway's error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		// No HTTP status reached us: treat as a transport failure.
		return fmt.Errorf("%w: %v", acl.ErrRemoteUnavailable, err)
	}

	switch {
	case apiErr.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %v", acl.ErrCalendarNotFound, err)
	case apiErr.Code == http.StatusBadRequest:
		return fmt.Errorf("%w: %v", acl.ErrGranteeInvalid, err)
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %v", acl.ErrRemoteUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", acl.ErrRemoteRejected, err)
	}
}

// withRetry runs op, retrying transient failures with exponential backoff.
// Permanent errors and caller errors pass through on the first occurrence.
func (g *implGateway) withRetry(ctx context.Context, op func() error) error {
	var lastErr error

	for attempt := 0; attempt < g.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<(attempt-1)) * g.retryDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", acl.ErrRemoteUnavailable, ctx.Err())
			}
		}

		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.Is(err, acl.ErrRemoteUnavailable) {
			return err
		}
		g.l.Warnf(ctx, "acl: transient failure (attempt %d/%d): %v", attempt+1, g.retryAttempts, err)
	}

	return lastErr
}
