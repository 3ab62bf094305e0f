package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientListUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/v1/users" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer svc-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("per_page") != "50" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users":[{"id":"u1","email":"a@b.io"},{"id":"u2","email":"c@d.io"}]}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, ServiceKey: "svc-key", HTTPClient: srv.Client()}
	users, err := c.ListUsers(context.Background(), 2, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[0].ID != "u1" || users[1].Email != "c@d.io" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestClientListUsersErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, ServiceKey: "bad-key", HTTPClient: srv.Client()}
	if _, err := c.ListUsers(context.Background(), 1, 50); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestClientListUsersUnconfigured(t *testing.T) {
	c := &Client{HTTPClient: http.DefaultClient}
	if _, err := c.ListUsers(context.Background(), 1, 50); err == nil {
		t.Fatalf("expected error when base URL and key are missing")
	}
}
