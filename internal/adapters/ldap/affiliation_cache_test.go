package ldap

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
)

// countingDirectory records how often each directory operation runs.
type countingDirectory struct {
	bindCalls int32
	affCalls  int32

	bindErr error
	aff     domainauth.Affiliations
	affErr  error
}

func (d *countingDirectory) UserDN(uid string) string {
	return "uid=" + uid + ",ou=people,dc=example,dc=org"
}

func (d *countingDirectory) Bind(ctx context.Context, uid, password string) error {
	atomic.AddInt32(&d.bindCalls, 1)
	return d.bindErr
}

func (d *countingDirectory) Affiliations(ctx context.Context, uid, password string) (domainauth.Affiliations, error) {
	atomic.AddInt32(&d.affCalls, 1)
	return d.aff, d.affErr
}

func TestAffiliationCache_MissThenHit(t *testing.T) {
	dir := &countingDirectory{aff: domainauth.Affiliations{
		OwnerOf:  []string{"widgets"},
		MemberOf: []string{"widgets", "gadgets"},
	}}
	cache := NewAffiliationCache(dir, time.Hour)

	first, err := cache.Affiliations(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, dir.aff, first)
	assert.EqualValues(t, 1, atomic.LoadInt32(&dir.affCalls))

	// Second call is served from cache but still verifies the password.
	second, err := cache.Affiliations(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, dir.aff, second)
	assert.EqualValues(t, 1, atomic.LoadInt32(&dir.affCalls))
	assert.EqualValues(t, 2, atomic.LoadInt32(&dir.bindCalls))
}

func TestAffiliationCache_HitStillRejectsBadPassword(t *testing.T) {
	dir := &countingDirectory{aff: domainauth.Affiliations{MemberOf: []string{"widgets"}}}
	cache := NewAffiliationCache(dir, time.Hour)

	_, err := cache.Affiliations(context.Background(), "alice", "secret")
	require.NoError(t, err)

	dir.bindErr = domainauth.ErrInvalidCredentials
	_, err = cache.Affiliations(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
}

func TestAffiliationCache_TTLExpiryRefetches(t *testing.T) {
	dir := &countingDirectory{aff: domainauth.Affiliations{MemberOf: []string{"widgets"}}}
	cache := NewAffiliationCache(dir, time.Hour)

	current := time.Now()
	cache.now = func() time.Time { return current }

	_, err := cache.Affiliations(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&dir.affCalls))

	// Entry goes stale.
	current = current.Add(2 * time.Hour)
	dir.aff = domainauth.Affiliations{MemberOf: []string{"widgets", "newproj"}}

	refreshed, err := cache.Affiliations(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&dir.affCalls))
	assert.Equal(t, []string{"widgets", "newproj"}, refreshed.MemberOf)
}

func TestAffiliationCache_ErrorsAreNotCached(t *testing.T) {
	dir := &countingDirectory{affErr: domainauth.ErrInvalidCredentials}
	cache := NewAffiliationCache(dir, time.Hour)

	_, err := cache.Affiliations(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domainauth.ErrInvalidCredentials)

	dir.affErr = nil
	dir.aff = domainauth.Affiliations{MemberOf: []string{"widgets"}}
	got, err := cache.Affiliations(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, []string{"widgets"}, got.MemberOf)
}

func TestAffiliationCache_ConcurrentMissesCollapse(t *testing.T) {
	dir := &countingDirectory{aff: domainauth.Affiliations{MemberOf: []string{"widgets"}}}
	cache := NewAffiliationCache(dir, time.Hour)

	const n = 8
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Affiliations(context.Background(), "alice", "secret")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Concurrent cold lookups for one uid share a single directory search.
	assert.LessOrEqual(t, atomic.LoadInt32(&dir.affCalls), int32(2))
}

// gatedDirectory checks passwords on every bind and parks Affiliations
// until released, so a test can issue a second call mid-lookup.
type gatedDirectory struct {
	password string
	aff      domainauth.Affiliations

	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (d *gatedDirectory) UserDN(uid string) string {
	return "uid=" + uid + ",ou=people,dc=example,dc=org"
}

func (d *gatedDirectory) Bind(ctx context.Context, uid, password string) error {
	if password != d.password {
		return domainauth.ErrInvalidCredentials
	}
	return nil
}

func (d *gatedDirectory) Affiliations(ctx context.Context, uid, password string) (domainauth.Affiliations, error) {
	if err := d.Bind(ctx, uid, password); err != nil {
		return domainauth.Affiliations{}, err
	}
	d.once.Do(func() { close(d.started) })
	<-d.release
	return d.aff, nil
}

func TestAffiliationCache_ConcurrentCallerBindsItsOwnPassword(t *testing.T) {
	dir := &gatedDirectory{
		password: "good",
		aff:      domainauth.Affiliations{MemberOf: []string{"widgets"}},
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	cache := NewAffiliationCache(dir, time.Hour)

	done := make(chan error, 1)
	go func() {
		_, err := cache.Affiliations(context.Background(), "alice", "good")
		done <- err
	}()
	<-dir.started

	// While the first lookup is still in flight, a caller with a wrong
	// password must be rejected by its own bind, not handed the shared
	// result.
	got, err := cache.Affiliations(context.Background(), "alice", "WRONG")
	assert.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
	assert.Empty(t, got.MemberOf)

	close(dir.release)
	require.NoError(t, <-done)
}

func TestAffiliationCache_Delegation(t *testing.T) {
	dir := &countingDirectory{}
	cache := NewAffiliationCache(dir, time.Hour)

	assert.Equal(t, "uid=alice,ou=people,dc=example,dc=org", cache.UserDN("alice"))
	require.NoError(t, cache.Bind(context.Background(), "alice", "secret"))
	assert.EqualValues(t, 1, atomic.LoadInt32(&dir.bindCalls))
}
