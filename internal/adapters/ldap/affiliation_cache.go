package ldap

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
	"github.com/opencommons/gatehouse/internal/ports"
)

// AffiliationCache wraps a Directory with a bounded-TTL per-user cache of
// affiliation lookups, so the group subtree is not re-searched on every
// request. Authentication is never skipped: a cache hit still performs a
// bind-only connection to verify the supplied password.
type AffiliationCache struct {
	dir ports.Directory
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group

	// now is swappable for tests.
	now func() time.Time
}

type cacheEntry struct {
	fetchedAt    time.Time
	affiliations domainauth.Affiliations
}

// NewAffiliationCache creates an AffiliationCache over dir with the given TTL.
func NewAffiliationCache(dir ports.Directory, ttl time.Duration) *AffiliationCache {
	return &AffiliationCache{
		dir:     dir,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// UserDN delegates DN expansion to the underlying directory.
func (c *AffiliationCache) UserDN(uid string) string {
	return c.dir.UserDN(uid)
}

// Bind delegates credential verification to the directory unconditionally.
func (c *AffiliationCache) Bind(ctx context.Context, uid, password string) error {
	return c.dir.Bind(ctx, uid, password)
}

// Affiliations returns the user's cached affiliations after verifying the
// password, or performs a full directory lookup when the entry is missing or
// older than the TTL. Entries are replaced wholesale, never merged, and
// concurrent refreshes for one uid are collapsed into a single lookup.
//
// Every caller binds with its own password before any cached or shared
// result is returned. A caller joining an in-flight lookup for the same uid
// must not inherit the first caller's bind outcome.
func (c *AffiliationCache) Affiliations(ctx context.Context, uid, password string) (domainauth.Affiliations, error) {
	if err := c.dir.Bind(ctx, uid, password); err != nil {
		return domainauth.Affiliations{}, err
	}

	if cached, ok := c.fresh(uid); ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(uid, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have refreshed.
		if cached, ok := c.fresh(uid); ok {
			return cached, nil
		}

		aff, err := c.dir.Affiliations(ctx, uid, password)
		if err != nil {
			return nil, err
		}
		c.store(uid, aff)
		return aff, nil
	})
	if err != nil {
		return domainauth.Affiliations{}, err
	}
	return v.(domainauth.Affiliations), nil
}

// fresh returns the cached entry for uid if it is younger than the TTL.
// A stale entry is treated as absent.
func (c *AffiliationCache) fresh(uid string) (domainauth.Affiliations, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[uid]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return domainauth.Affiliations{}, false
	}
	return e.affiliations, true
}

func (c *AffiliationCache) store(uid string, aff domainauth.Affiliations) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[uid] = cacheEntry{fetchedAt: c.now(), affiliations: aff}
}
