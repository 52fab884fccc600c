package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"net/http"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
)

// SessionStore persists the session record carried by browser cookies.
// Read returns (nil, nil) when no valid session exists; an expired record is
// removed as a side effect and treated as absent. On success the record's
// last-used timestamp is refreshed (sliding idle expiry).
type SessionStore interface {
	Read(w http.ResponseWriter, r *http.Request) (*domainauth.Session, error)
	Write(w http.ResponseWriter, r *http.Request, sess *domainauth.Session) error
	Clear(w http.ResponseWriter, r *http.Request)
}

// IdentityProvider initiates and completes the three-legged OAuth handshake
// against the identity provider.
type IdentityProvider interface {
	// AuthorizeURL returns the provider URL to redirect the client to,
	// parameterized with the state token and our callback URL.
	AuthorizeURL(state, callbackURL string) string

	// Exchange trades an authorization code for the authenticated identity.
	// The call is bounded by a short read timeout; a non-2xx or malformed
	// response is a hard failure for the request.
	Exchange(ctx context.Context, code string) (*domainauth.Session, error)
}

// TokenVerifier is the application-supplied callback for bearer tokens
// (personal access tokens and role accounts). A (nil, nil) return uniformly
// means "no session" regardless of how the verifier represents absence.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domainauth.Session, error)
}

// Directory authenticates users and resolves project affiliations against an
// external directory service (LDAP).
type Directory interface {
	// UserDN expands a uid into the distinguished name used for binds.
	UserDN(uid string) string

	// Bind verifies the uid/password pair without performing any search.
	// A rejected bind returns domain ErrInvalidCredentials.
	Bind(ctx context.Context, uid, password string) error

	// Affiliations binds and then searches the group base, partitioning the
	// groups referencing the user's DN into owner and member sets.
	Affiliations(ctx context.Context, uid, password string) (domainauth.Affiliations, error)
}
