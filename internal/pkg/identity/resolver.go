package identity

import (
	"context"
	"strings"
)

const defaultPageSize = 50

// Cache is the optional email-to-user-id lookup cache. Misses are cheap to
// tolerate, so implementations may drop entries at will.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// Resolver maps provider-supplied identity hints to an internal user id.
type Resolver struct {
	dir      Directory
	cache    Cache
	pageSize int
}

// NewResolver creates a resolver over the given directory. cache may be nil.
func NewResolver(dir Directory, cache Cache) *Resolver {
	return &Resolver{dir: dir, cache: cache, pageSize: defaultPageSize}
}

// Resolve returns the internal user id for an event. An explicit id from
// checkout metadata is trusted as-is. Otherwise the directory is scanned page
// by page for a matching email. An empty result is not an error: callers
// degrade to recording the order without a user link and skipping the
// subscription update.
//
// The email path is O(total users) per uncached lookup. Acceptable while the
// user base is small; the Directory interface exists so this can be swapped
// for an indexed lookup without touching event handling.
func (r *Resolver) Resolve(ctx context.Context, explicitUserID, email string) (string, error) {
	if id := strings.TrimSpace(explicitUserID); id != "" {
		return id, nil
	}

	em := strings.ToLower(strings.TrimSpace(email))
	if em == "" {
		return "", nil
	}

	if r.cache != nil {
		if id, ok := r.cache.Get(ctx, cacheKey(em)); ok && id != "" {
			return id, nil
		}
	}

	for page := 1; ; page++ {
		users, err := r.dir.ListUsers(ctx, page, r.pageSize)
		if err != nil {
			return "", err
		}
		for _, u := range users {
			if strings.EqualFold(strings.TrimSpace(u.Email), em) {
				if r.cache != nil {
					r.cache.Set(ctx, cacheKey(em), u.ID)
				}
				return u.ID, nil
			}
		}
		if len(users) < r.pageSize {
			return "", nil
		}
	}
}

func cacheKey(email string) string {
	return "identity:email:" + email
}
