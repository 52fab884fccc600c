package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticResolver returns a fixed session or error.
type staticResolver struct {
	sess *domainauth.Session
	err  error
}

func (s *staticResolver) Resolve(w http.ResponseWriter, r *http.Request) (*domainauth.Session, error) {
	return s.sess, s.err
}

func okHandler(t *testing.T, wantUID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantUID, sess.UID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequire_RedirectsAnonymousBrowserToLogin(t *testing.T) {
	mw := Require(domainauth.MustDeclare(domainauth.Expression{}), RequireConfig{
		Resolver:  &staticResolver{},
		LoginPath: "/auth",
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports?page=2", nil)
	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Equal(t, "/auth?login="+url.QueryEscape("/reports?page=2"), loc)
}

func TestRequire_AnonymousWithCredentialsGetsError(t *testing.T) {
	// A request that carried an Authorization header but still resolved to no
	// session gets the failure text, not a login redirect.
	mw := Require(domainauth.MustDeclare(domainauth.Expression{}), RequireConfig{
		Resolver: &staticResolver{},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set("Authorization", "Bearer expired")
	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domainauth.MsgNotLoggedIn+"\n", rec.Body.String())
}

func TestRequire_InsufficientPrivilege(t *testing.T) {
	mw := Require(domainauth.MustDeclare(domainauth.Expression{
		AllOf: []*domainauth.Requirement{domainauth.Member},
	}), RequireConfig{
		Resolver: &staticResolver{sess: &domainauth.Session{UID: "bob", Email: "b@c.d"}},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/members-only", nil)
	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domainauth.MsgNotMember+"\n", rec.Body.String())
}

func TestRequire_GrantsAndInjectsSession(t *testing.T) {
	mw := Require(domainauth.MustDeclare(domainauth.Expression{
		AllOf: []*domainauth.Requirement{domainauth.Member, domainauth.MFAEnabled},
	}), RequireConfig{
		Resolver: &staticResolver{sess: &domainauth.Session{
			UID: "alice", Email: "a@b.c", IsMember: true, MFAVerified: true,
		}},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/members-only", nil)
	mw(okHandler(t, "alice")).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequire_ResolutionFailure(t *testing.T) {
	mw := Require(domainauth.MustDeclare(domainauth.Expression{}), RequireConfig{
		Resolver: &staticResolver{err: domainauth.NewProtocolError(
			http.StatusInternalServerError, "could not read session, please try again later", nil)},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	mw := OptionalAuth(&staticResolver{sess: &domainauth.Session{UID: "alice", Email: "a@b.c"}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	mw(okHandler(t, "alice")).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Without a session the handler still runs, just without context identity.
	mw = OptionalAuth(&staticResolver{})
	rec = httptest.NewRecorder()
	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := SessionFromContext(r.Context())
		assert.False(t, ok)
		called = true
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestRecover_CatchesPanics(t *testing.T) {
	logger := testLogger()
	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogging_PreservesStatus(t *testing.T) {
	h := Logging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
