package gcal_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"calendar-share-bot/pkg/gcal"
)

// fakeCalendarAPI serves just enough of the Calendar v3 surface for the client.
func fakeCalendarAPI(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/users/me/calendarList"):
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": "work@x.com", "summary": "Work", "accessRole": "owner"},
					{"id": "team@x.com", "summary": "Team", "accessRole": "reader"},
					{"id": "home@x.com", "summary": "Home", "accessRole": "owner"},
				},
			})

		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/calendars/work@x.com/acl"):
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": "user:me", "role": "owner", "scope": map[string]string{"type": "user", "value": "me@x.com"}},
					{"id": "user:alice", "role": "reader", "scope": map[string]string{"type": "user", "value": "alice@example.com"}},
				},
			})

		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/calendars/work@x.com/acl"):
			var rule map[string]any
			json.NewDecoder(r.Body).Decode(&rule)
			if rule["role"] == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(rule)

		case r.Method == http.MethodPatch && strings.Contains(r.URL.Path, "/acl/user:alice"):
			json.NewEncoder(w).Encode(map[string]any{"id": "user:alice", "role": "writer"})

		case r.Method == http.MethodDelete && strings.Contains(r.URL.Path, "/acl/user:alice"):
			w.WriteHeader(http.StatusNoContent)

		case strings.Contains(r.URL.Path, "/calendars/missing@x.com/"):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": {"code": 404, "message": "Not Found"}}`))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient(t *testing.T) {
	ts := fakeCalendarAPI(t)
	defer ts.Close()

	client := gcal.NewClient()
	client.SetEndpoint(ts.URL)

	ctx := context.Background()

	t.Run("ListOwnedCalendars filters shared calendars", func(t *testing.T) {
		cals, err := client.ListOwnedCalendars(ctx, "tok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cals) != 2 {
			t.Fatalf("expected 2 owned calendars, got %d", len(cals))
		}
		if cals[0].ID != "work@x.com" || cals[1].ID != "home@x.com" {
			t.Errorf("unexpected calendars: %+v", cals)
		}
	})

	t.Run("ListACLRules returns all rules with scope", func(t *testing.T) {
		rules, err := client.ListACLRules(ctx, "tok", "work@x.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rules) != 2 {
			t.Fatalf("expected 2 rules, got %d", len(rules))
		}
		if rules[1].Email != "alice@example.com" || rules[1].Role != "reader" {
			t.Errorf("unexpected rule: %+v", rules[1])
		}
	})

	t.Run("InsertACLRule", func(t *testing.T) {
		if err := client.InsertACLRule(ctx, "tok", "work@x.com", "bob@example.com", "reader"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("PatchACLRule", func(t *testing.T) {
		if err := client.PatchACLRule(ctx, "tok", "work@x.com", "user:alice", "writer"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("DeleteACLRule", func(t *testing.T) {
		if err := client.DeleteACLRule(ctx, "tok", "work@x.com", "user:alice"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Missing calendar surfaces API error", func(t *testing.T) {
		_, err := client.ListACLRules(ctx, "tok", "missing@x.com")
		if err == nil {
			t.Fatalf("expected error for missing calendar")
		}
	})
}
