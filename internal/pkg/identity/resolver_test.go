package identity

import (
	"context"
	"errors"
	"testing"
)

type fakeDirectory struct {
	users []User
	err   error
	calls int
}

func (d *fakeDirectory) ListUsers(_ context.Context, page, perPage int) ([]User, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	start := (page - 1) * perPage
	if start >= len(d.users) {
		return nil, nil
	}
	end := start + perPage
	if end > len(d.users) {
		end = len(d.users)
	}
	return d.users[start:end], nil
}

type mapCache struct {
	entries map[string]string
	sets    int
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key, value string) {
	if c.entries == nil {
		c.entries = map[string]string{}
	}
	c.entries[key] = value
	c.sets++
}

func TestResolveExplicitIDWins(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("must not be called")}
	r := NewResolver(dir, nil)

	id, err := r.Resolve(context.Background(), " user-1 ", "a@b.io")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "user-1" {
		t.Fatalf("expected trimmed explicit id, got %q", id)
	}
	if dir.calls != 0 {
		t.Fatalf("directory must not be consulted when an explicit id exists")
	}
}

func TestResolveEmptyHints(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("must not be called")}
	r := NewResolver(dir, nil)

	id, err := r.Resolve(context.Background(), "", "  ")
	if err != nil || id != "" {
		t.Fatalf("expected empty resolution without error, got id=%q err=%v", id, err)
	}
}

func TestResolveByEmailScansPages(t *testing.T) {
	users := make([]User, 0, 120)
	for i := 0; i < 119; i++ {
		users = append(users, User{ID: "filler", Email: "x@y.io"})
	}
	users = append(users, User{ID: "user-7", Email: "Found@B.io"})
	dir := &fakeDirectory{users: users}
	r := NewResolver(dir, nil)

	id, err := r.Resolve(context.Background(), "", "found@b.io")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "user-7" {
		t.Fatalf("expected case-insensitive match on the last page, got %q", id)
	}
	if dir.calls != 3 {
		t.Fatalf("expected 3 pages of 50 scanned, got %d calls", dir.calls)
	}
}

func TestResolveByEmailNotFound(t *testing.T) {
	dir := &fakeDirectory{users: []User{{ID: "u1", Email: "a@b.io"}}}
	r := NewResolver(dir, nil)

	id, err := r.Resolve(context.Background(), "", "missing@b.io")
	if err != nil || id != "" {
		t.Fatalf("expected empty resolution for unknown email, got id=%q err=%v", id, err)
	}
}

func TestResolveDirectoryError(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("directory down")}
	r := NewResolver(dir, nil)

	if _, err := r.Resolve(context.Background(), "", "a@b.io"); err == nil {
		t.Fatalf("expected directory error to surface")
	}
}

func TestResolveCache(t *testing.T) {
	dir := &fakeDirectory{users: []User{{ID: "user-3", Email: "a@b.io"}}}
	cache := &mapCache{}
	r := NewResolver(dir, cache)
	ctx := context.Background()

	id, err := r.Resolve(ctx, "", "A@B.io")
	if err != nil || id != "user-3" {
		t.Fatalf("unexpected result: id=%q err=%v", id, err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected resolution to be cached")
	}

	// Second lookup is served from the cache without a directory call.
	dir.err = errors.New("directory down")
	id, err = r.Resolve(ctx, "", "a@b.io")
	if err != nil || id != "user-3" {
		t.Fatalf("expected cache hit, got id=%q err=%v", id, err)
	}
}
