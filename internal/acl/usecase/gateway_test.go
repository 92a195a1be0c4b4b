package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"calendar-share-bot/internal/acl"
	"calendar-share-bot/internal/acl/usecase"
	"calendar-share-bot/internal/authz"
	"calendar-share-bot/internal/model"
	"calendar-share-bot/pkg/gcal"
)

// ── Mocks ──────────────────────────────────────────────────────────────────

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Info(ctx context.Context, args ...interface{})                   {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...interface{})   {}
func (m *mockLogger) Warn(ctx context.Context, args ...interface{})                   {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...interface{})   {}
func (m *mockLogger) Error(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) DPanic(ctx context.Context, args ...interface{})                 {}
func (m *mockLogger) DPanicf(ctx context.Context, format string, args ...interface{}) {}
func (m *mockLogger) Panic(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Panicf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Fatal(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...interface{})  {}

// mockCoordinator hands out a fixed token or a fixed error.
type mockCoordinator struct {
	token string
	err   error
}

func (m *mockCoordinator) BeginAuthorization(ctx context.Context, identity int64) (string, error) {
	return "", nil
}
func (m *mockCoordinator) HandleCallback(ctx context.Context, nonce, code string) (int64, error) {
	return 0, nil
}
func (m *mockCoordinator) GetValidToken(ctx context.Context, identity int64) (string, error) {
	return m.token, m.err
}
func (m *mockCoordinator) Revoke(ctx context.Context, identity int64) error { return nil }

// fakeACL is a stateful fake of the Calendar ACL surface.
type fakeACL struct {
	*httptest.Server

	mu       sync.Mutex
	rules    map[string]map[string]string // calendarID -> email -> role
	requests int
	failures int // respond 503 to this many requests before behaving
}

func newFakeACL() *fakeACL {
	f := &fakeACL{rules: map[string]map[string]string{
		"work@x.com": {},
		"home@x.com": {},
	}}

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++

		if f.failures > 0 {
			f.failures--
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error": {"code": 503, "message": "Backend Error"}}`))
			return
		}

		if strings.HasSuffix(r.URL.Path, "/users/me/calendarList") {
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": "work@x.com", "summary": "Work", "accessRole": "owner"},
					{"id": "shared@x.com", "summary": "Shared", "accessRole": "writer"},
					{"id": "home@x.com", "summary": "Home", "accessRole": "owner"},
				},
			})
			return
		}

		calendarID, ruleEmail, ok := parseACLPath(r.URL.Path)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		cal, exists := f.rules[calendarID]
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": {"code": 404, "message": "Not Found"}}`))
			return
		}

		switch r.Method {
		case http.MethodGet:
			items := []map[string]any{
				{"id": "user:owner", "role": "owner", "scope": map[string]string{"type": "user", "value": "me@x.com"}},
			}
			for email, role := range cal {
				items = append(items, map[string]any{
					"id":    "user:" + email,
					"role":  role,
					"scope": map[string]string{"type": "user", "value": email},
				})
			}
			json.NewEncoder(w).Encode(map[string]any{"items": items})

		case http.MethodPost:
			var body struct {
				Role  string `json:"role"`
				Scope struct {
					Value string `json:"value"`
				} `json:"scope"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if !strings.Contains(body.Scope.Value, "@") {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": {"code": 400, "message": "Invalid scope value"}}`))
				return
			}
			cal[body.Scope.Value] = body.Role
			json.NewEncoder(w).Encode(map[string]any{"id": "user:" + body.Scope.Value, "role": body.Role})

		case http.MethodPatch:
			var body struct {
				Role string `json:"role"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			cal[ruleEmail] = body.Role
			json.NewEncoder(w).Encode(map[string]any{"id": "user:" + ruleEmail, "role": body.Role})

		case http.MethodDelete:
			delete(cal, ruleEmail)
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	return f
}

// parseACLPath splits ".../calendars/{id}/acl[/user:{email}]".
func parseACLPath(path string) (calendarID, ruleEmail string, ok bool) {
	idx := strings.Index(path, "/calendars/")
	if idx < 0 {
		return "", "", false
	}
	rest := strings.TrimPrefix(path[idx:], "/calendars/")
	parts := strings.SplitN(rest, "/acl", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	calendarID = parts[0]
	ruleEmail = strings.TrimPrefix(strings.TrimPrefix(parts[1], "/"), "user:")
	return calendarID, ruleEmail, true
}

func (f *fakeACL) grants(calendarID string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for email, role := range f.rules[calendarID] {
		out[email] = role
	}
	return out
}

func (f *fakeACL) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func newGateway(f *fakeACL, coord authz.Coordinator) acl.Gateway {
	client := gcal.NewClient()
	client.SetEndpoint(f.URL)
	return usecase.New(&mockLogger{}, coord, client, usecase.Config{
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})
}

// ── Tests ──────────────────────────────────────────────────────────────────

func TestListCalendars(t *testing.T) {
	ctx := context.Background()

	t.Run("returns owned calendars only", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		cals, err := gw.ListCalendars(ctx, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cals) != 2 || cals[0].ID != "work@x.com" || cals[1].ID != "home@x.com" {
			t.Errorf("unexpected calendars: %+v", cals)
		}
	})

	t.Run("authorization errors pass through unchanged", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{err: authz.ErrReauthorizationRequired})

		_, err := gw.ListCalendars(ctx, 100)
		if !errors.Is(err, authz.ErrReauthorizationRequired) {
			t.Fatalf("expected ErrReauthorizationRequired, got %v", err)
		}
		if f.requestCount() != 0 {
			t.Errorf("no remote call may happen without a token")
		}
	})
}

func TestAddShare(t *testing.T) {
	ctx := context.Background()

	t.Run("grant then list shows the grant", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		if err := gw.AddShare(ctx, 100, "work@x.com", "alice@example.com", model.RoleReader); err != nil {
			t.Fatalf("AddShare failed: %v", err)
		}

		grants, err := gw.ListShares(ctx, 100, "work@x.com")
		if err != nil {
			t.Fatalf("ListShares failed: %v", err)
		}
		if len(grants) != 1 || grants[0].Email != "alice@example.com" || grants[0].Role != model.RoleReader {
			t.Errorf("unexpected grants: %+v", grants)
		}
	})

	t.Run("repeat grant is idempotent", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		for i := 0; i < 2; i++ {
			if err := gw.AddShare(ctx, 100, "work@x.com", "alice@example.com", model.RoleReader); err != nil {
				t.Fatalf("AddShare %d failed: %v", i+1, err)
			}
		}

		grants := f.grants("work@x.com")
		if len(grants) != 1 || grants["alice@example.com"] != "reader" {
			t.Errorf("expected one reader grant, got %+v", grants)
		}
	})

	t.Run("regrant with new role updates in place", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		gw.AddShare(ctx, 100, "work@x.com", "alice@example.com", model.RoleReader)
		if err := gw.AddShare(ctx, 100, "work@x.com", "alice@example.com", model.RoleWriter); err != nil {
			t.Fatalf("role update failed: %v", err)
		}

		grants := f.grants("work@x.com")
		if len(grants) != 1 || grants["alice@example.com"] != "writer" {
			t.Errorf("expected single writer grant, got %+v", grants)
		}
	})

	t.Run("owner rule is never rewritten", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		// The fake lists me@x.com as the calendar owner; granting the owner a
		// lesser role must not patch the owner rule itself.
		if err := gw.AddShare(ctx, 100, "work@x.com", "me@x.com", model.RoleReader); err != nil {
			t.Fatalf("AddShare failed: %v", err)
		}

		grants := f.grants("work@x.com")
		if _, patched := grants["owner"]; patched {
			t.Errorf("owner rule was rewritten: %+v", grants)
		}
		if grants["me@x.com"] != "reader" {
			t.Errorf("expected a separate reader rule for the owner's email, got %+v", grants)
		}
	})

	t.Run("invalid grantee", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		err := gw.AddShare(ctx, 100, "work@x.com", "not-an-email", model.RoleReader)
		if !errors.Is(err, acl.ErrGranteeInvalid) {
			t.Fatalf("expected ErrGranteeInvalid, got %v", err)
		}
	})

	t.Run("unknown calendar", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		err := gw.AddShare(ctx, 100, "missing@x.com", "alice@example.com", model.RoleReader)
		if !errors.Is(err, acl.ErrCalendarNotFound) {
			t.Fatalf("expected ErrCalendarNotFound, got %v", err)
		}
	})
}

func TestDeleteShare(t *testing.T) {
	ctx := context.Background()

	t.Run("removes an existing grant", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		gw.AddShare(ctx, 100, "work@x.com", "alice@example.com", model.RoleReader)
		if err := gw.DeleteShare(ctx, 100, "work@x.com", "alice@example.com"); err != nil {
			t.Fatalf("DeleteShare failed: %v", err)
		}
		if grants := f.grants("work@x.com"); len(grants) != 0 {
			t.Errorf("grant not removed: %+v", grants)
		}
	})

	t.Run("absent grantee is a no-op", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		if err := gw.DeleteShare(ctx, 100, "work@x.com", "ghost@example.com"); err != nil {
			t.Fatalf("expected no-op success, got %v", err)
		}
	})
}

func TestRetryPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("transient failures are retried", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		f.failures = 2 // first two requests answer 503
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		cals, err := gw.ListCalendars(ctx, 100)
		if err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}
		if len(cals) != 2 {
			t.Errorf("unexpected calendars after retry: %+v", cals)
		}
	})

	t.Run("exhausted retries surface unavailable", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		f.failures = 100
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		_, err := gw.ListCalendars(ctx, 100)
		if !errors.Is(err, acl.ErrRemoteUnavailable) {
			t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
		}
		if f.requestCount() != 3 {
			t.Errorf("expected exactly 3 attempts, got %d", f.requestCount())
		}
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		f := newFakeACL()
		defer f.Close()
		gw := newGateway(f, &mockCoordinator{token: "tok"})

		before := f.requestCount()
		_, err := gw.ListShares(ctx, 100, "missing@x.com")
		if !errors.Is(err, acl.ErrCalendarNotFound) {
			t.Fatalf("expected ErrCalendarNotFound, got %v", err)
		}
		if f.requestCount()-before != 1 {
			t.Errorf("permanent error must not be retried, saw %d attempts", f.requestCount()-before)
		}
	})
}
