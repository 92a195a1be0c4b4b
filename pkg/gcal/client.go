package gcal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client builds per-request Google Calendar API services.
// A fresh service is constructed for every call because each call may carry
// a different user's access token.
type Client struct {
	endpoint string // optional API base URL override (tests)
	timeout  time.Duration
}

// NewClient creates a Calendar API client factory.
func NewClient() *Client {
	return &Client{timeout: 10 * time.Second}
}

// SetEndpoint overrides the Calendar API base URL for testing purposes.
func (c *Client) SetEndpoint(url string) {
	c.endpoint = url
}

// SetTimeout bounds every outbound Calendar API call.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// service builds a calendar.Service authenticated with the given access token.
func (c *Client) service(ctx context.Context, accessToken string) (*calendar.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// ListOwnedCalendars returns the calendars the token's user owns.
// Shared calendars are excluded: only the owner may manage ACLs.
func (c *Client) ListOwnedCalendars(ctx context.Context, accessToken string) ([]Calendar, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar list failed: %w", err)
	}

	var calendars []Calendar
	for _, item := range list.Items {
		if item.AccessRole != accessRoleOwner {
			continue
		}
		calendars = append(calendars, Calendar{ID: item.Id, Summary: item.Summary})
	}
	return calendars, nil
}

// ListACLRules returns every ACL rule on the calendar, including the owner rule.
func (c *Client) ListACLRules(ctx context.Context, accessToken, calendarID string) ([]Rule, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	acl, err := svc.Acl.List(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("acl list failed for calendar %q: %w", calendarID, err)
	}

	rules := make([]Rule, 0, len(acl.Items))
	for _, item := range acl.Items {
		rule := Rule{ID: item.Id, Role: item.Role}
		if item.Scope != nil {
			rule.ScopeType = item.Scope.Type
			rule.Email = item.Scope.Value
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// InsertACLRule grants email the given role on the calendar.
func (c *Client) InsertACLRule(ctx context.Context, accessToken, calendarID, email, role string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return err
	}

	rule := &calendar.AclRule{
		Role: role,
		Scope: &calendar.AclRuleScope{
			Type:  scopeTypeUser,
			Value: email,
		},
	}
	if _, err := svc.Acl.Insert(calendarID, rule).Context(ctx).Do(); err != nil {
		return fmt.Errorf("acl insert failed for calendar %q: %w", calendarID, err)
	}
	return nil
}

// PatchACLRule changes the role of an existing ACL rule.
func (c *Client) PatchACLRule(ctx context.Context, accessToken, calendarID, ruleID, role string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return err
	}

	if _, err := svc.Acl.Patch(calendarID, ruleID, &calendar.AclRule{Role: role}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("acl patch failed for rule %q: %w", ruleID, err)
	}
	return nil
}

// DeleteACLRule removes an ACL rule from the calendar.
func (c *Client) DeleteACLRule(ctx context.Context, accessToken, calendarID, ruleID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return err
	}

	if err := svc.Acl.Delete(calendarID, ruleID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("acl delete failed for rule %q: %w", ruleID, err)
	}
	return nil
}
