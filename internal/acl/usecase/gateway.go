package usecase

import (
	"context"

	"calendar-share-bot/internal/model"
	"calendar-share-bot/pkg/gcal"
)

const roleOwner = "owner"

// ListCalendars returns the calendars the identity owns.
func (g *implGateway) ListCalendars(ctx context.Context, identity int64) ([]model.CalendarInfo, error) {
	token, err := g.coord.GetValidToken(ctx, identity)
	if err != nil {
		return nil, err
	}

	var raw []gcal.Calendar
	err = g.withRetry(ctx, func() error {
		var listErr error
		raw, listErr = g.client.ListOwnedCalendars(ctx, token)
		return classify(listErr)
	})
	if err != nil {
		return nil, err
	}

	calendars := make([]model.CalendarInfo, 0, len(raw))
	for _, c := range raw {
		calendars = append(calendars, model.CalendarInfo{ID: c.ID, Summary: c.Summary})
	}
	return calendars, nil
}

// ListShares returns the non-owner grants on the calendar.
func (g *implGateway) ListShares(ctx context.Context, identity int64, calendarID string) ([]model.ShareGrant, error) {
	token, err := g.coord.GetValidToken(ctx, identity)
	if err != nil {
		return nil, err
	}

	rules, err := g.listRules(ctx, token, calendarID)
	if err != nil {
		return nil, err
	}

	grants := make([]model.ShareGrant, 0, len(rules))
	for _, rule := range rules {
		if rule.Role == roleOwner || rule.Email == "" {
			continue
		}
		grants = append(grants, model.ShareGrant{
			CalendarID: calendarID,
			Email:      rule.Email,
			Role:       model.Role(rule.Role),
		})
	}
	return grants, nil
}

// AddShare grants email the role on the calendar, updating the existing rule
// when the grantee already holds one.
func (g *implGateway) AddShare(ctx context.Context, identity int64, calendarID, email string, role model.Role) error {
	token, err := g.coord.GetValidToken(ctx, identity)
	if err != nil {
		return err
	}

	rules, err := g.listRules(ctx, token, calendarID)
	if err != nil {
		return err
	}

	for _, rule := range rules {
		// Owner rules are never rewritten; the owner's grant falls through to
		// Insert and the remote service arbitrates, same as DeleteShare.
		if rule.Email != email || rule.Role == roleOwner {
			continue
		}
		if rule.Role == string(role) {
			// Same grant already in place.
			return nil
		}
		return g.withRetry(ctx, func() error {
			return classify(g.client.PatchACLRule(ctx, token, calendarID, rule.ID, string(role)))
		})
	}

	return g.withRetry(ctx, func() error {
		return classify(g.client.InsertACLRule(ctx, token, calendarID, email, string(role)))
	})
}

// DeleteShare revokes every rule granted to email on the calendar.
// Absence is success: revoking a grantee that has no access is a no-op.
func (g *implGateway) DeleteShare(ctx context.Context, identity int64, calendarID, email string) error {
	token, err := g.coord.GetValidToken(ctx, identity)
	if err != nil {
		return err
	}

	rules, err := g.listRules(ctx, token, calendarID)
	if err != nil {
		return err
	}

	for _, rule := range rules {
		if rule.Email != email || rule.Role == roleOwner {
			continue
		}
		ruleID := rule.ID
		if err := g.withRetry(ctx, func() error {
			return classify(g.client.DeleteACLRule(ctx, token, calendarID, ruleID))
		}); err != nil {
			return err
		}
	}
	return nil
}

func (g *implGateway) listRules(ctx context.Context, token, calendarID string) ([]gcal.Rule, error) {
	var rules []gcal.Rule
	err := g.withRetry(ctx, func() error {
		var listErr error
		rules, listErr = g.client.ListACLRules(ctx, token, calendarID)
		return classify(listErr)
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}
