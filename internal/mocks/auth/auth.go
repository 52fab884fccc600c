package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
	"github.com/opencommons/gatehouse/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.TokenVerifier    = (*MockTokenVerifier)(nil)
)

// MockIdentityProvider simulates an identity provider for tests.
type MockIdentityProvider struct {
	AuthorizeURLFunc func(state, callbackURL string) string
	ExchangeFunc     func(ctx context.Context, code string) (*domainauth.Session, error)

	// DefaultIdentity is returned by Exchange when ExchangeFunc is nil.
	DefaultIdentity *domainauth.Session
}

// NewMockIdentityProvider creates a MockIdentityProvider with a sensible
// default identity.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultIdentity: &domainauth.Session{
			UID:      "mock-user",
			FullName: "Mock User",
			Email:    "mock.user@example.com",
		},
	}
}

func (m *MockIdentityProvider) AuthorizeURL(state, callbackURL string) string {
	if m.AuthorizeURLFunc != nil {
		return m.AuthorizeURLFunc(state, callbackURL)
	}
	return "https://mock-idp/auth?state=" + state
}

func (m *MockIdentityProvider) Exchange(ctx context.Context, code string) (*domainauth.Session, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	sess := *m.DefaultIdentity
	return &sess, nil
}

// MemorySessionStore is an in-memory SessionStore keyed by a plain cookie ID.
// It performs no signing and no expiry; tests drive state transitions
// directly.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domainauth.Session
	nextID   int

	// ReadErr, when set, is returned by Read to simulate a backend failure.
	ReadErr error
}

const memoryCookieName = "test_session"

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*domainauth.Session)}
}

func (s *MemorySessionStore) Read(w http.ResponseWriter, r *http.Request) (*domainauth.Session, error) {
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	c, err := r.Cookie(memoryCookieName)
	if err != nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[c.Value], nil
}

func (s *MemorySessionStore) Write(w http.ResponseWriter, r *http.Request, sess *domainauth.Session) error {
	s.mu.Lock()
	s.nextID++
	id := "sid-" + strconv.Itoa(s.nextID)
	s.sessions[id] = sess
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: memoryCookieName, Value: id, Path: "/"})
	return nil
}

func (s *MemorySessionStore) Clear(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(memoryCookieName); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: memoryCookieName, Value: "", Path: "/", MaxAge: -1})
}

// Len reports the number of stored sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// MockTokenVerifier is a func-field TokenVerifier double.
type MockTokenVerifier struct {
	VerifyFunc func(ctx context.Context, token string) (*domainauth.Session, error)
}

func (m *MockTokenVerifier) Verify(ctx context.Context, token string) (*domainauth.Session, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token)
	}
	return nil, nil
}
