package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
	"github.com/opencommons/gatehouse/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.IdentityProvider
	Sessions ports.SessionStore

	// Directory is optional; nil disables basic-auth credential checks.
	Directory ports.Directory

	// Tokens is optional; nil means bearer tokens resolve to no session.
	Tokens ports.TokenVerifier

	// EndpointPath is the local OAuth endpoint, e.g. "/auth".
	EndpointPath string

	// WorkflowTimeout bounds how long an initiated handshake may stay pending.
	WorkflowTimeout time.Duration

	// DefaultDomain completes uid-only identities into email addresses.
	DefaultDomain string

	Logger *slog.Logger
}

// AuthService orchestrates credential resolution and the three-legged OAuth
// handshake. The pending-state map is shared by all in-flight requests; each
// state token is consumed exactly once.
type AuthService struct {
	provider  ports.IdentityProvider
	sessions  ports.SessionStore
	directory ports.Directory
	tokens    ports.TokenVerifier

	endpointPath    string
	workflowTimeout time.Duration
	defaultDomain   string
	logger          *slog.Logger

	mu      sync.Mutex
	pending map[string]pendingState

	// now is swappable for expiry tests.
	now func() time.Time
}

// pendingState tracks one in-flight OAuth handshake keyed by its state token.
type pendingState struct {
	createdAt time.Time
	returnTo  string
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	path := opts.EndpointPath
	if path == "" {
		path = "/auth"
	}
	timeout := opts.WorkflowTimeout
	if timeout <= 0 {
		timeout = 900 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider:        opts.Provider,
		sessions:        opts.Sessions,
		directory:       opts.Directory,
		tokens:          opts.Tokens,
		endpointPath:    path,
		workflowTimeout: timeout,
		defaultDomain:   opts.DefaultDomain,
		logger:          logger,
		pending:         make(map[string]pendingState),
		now:             time.Now,
	}, nil
}

// EndpointPath returns the local OAuth endpoint path.
func (s *AuthService) EndpointPath() string { return s.endpointPath }

// WorkflowTimeout returns the pending-handshake timeout.
func (s *AuthService) WorkflowTimeout() time.Duration { return s.workflowTimeout }

// Sessions exposes the session store for handlers that only need cookie I/O.
func (s *AuthService) Sessions() ports.SessionStore { return s.sessions }

// Resolve produces the Session for an incoming request, trying in order: the
// cookie session, a bearer token, then basic auth against the directory. The
// cookie path is cheap and short-circuits before any network-bound check.
// A nil, nil return means the request is simply unauthenticated.
func (s *AuthService) Resolve(w http.ResponseWriter, r *http.Request) (*domainauth.Session, error) {
	sess, err := s.sessions.Read(w, r)
	if err != nil {
		return nil, domainauth.NewProtocolError(http.StatusInternalServerError,
			"could not read session, please try again later", err)
	}
	if sess != nil {
		return sess, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}

	scheme, rest, _ := strings.Cut(header, " ")
	switch {
	case strings.EqualFold(scheme, "Bearer"):
		return s.resolveBearer(r, strings.TrimSpace(rest))
	case strings.EqualFold(scheme, "Basic"):
		return s.resolveBasic(r, strings.TrimSpace(rest))
	default:
		return nil, domainauth.NewProtocolError(http.StatusNotImplemented,
			fmt.Sprintf("authorization scheme %q is not implemented", scheme), nil)
	}
}

// resolveBearer delegates to the registered token verifier. Bearer sessions
// are resolved fresh on every request and never persisted.
func (s *AuthService) resolveBearer(r *http.Request, token string) (*domainauth.Session, error) {
	if s.tokens == nil {
		return nil, nil
	}
	sess, err := s.tokens.Verify(r.Context(), token)
	if err != nil {
		return nil, domainauth.NewProtocolError(http.StatusInternalServerError,
			"could not verify bearer token, please try again later", err)
	}
	if sess == nil || sess.UID == "" {
		// Any falsy verifier result uniformly means "no session".
		return nil, nil
	}
	sess.IsRoleAccount = true
	return sess, nil
}

// resolveBasic decodes the basic-auth payload and delegates verification to
// the directory. Basic-auth sessions are never persisted either.
func (s *AuthService) resolveBasic(r *http.Request, payload string) (*domainauth.Session, error) {
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domainauth.NewProtocolError(http.StatusBadRequest,
			"malformed basic authorization payload", err)
	}
	user, pass, found := strings.Cut(string(decoded), ":")
	if !found || user == "" {
		return nil, domainauth.NewProtocolError(http.StatusBadRequest,
			"malformed basic authorization payload", nil)
	}

	if s.directory == nil {
		return nil, domainauth.NewProtocolError(http.StatusNotImplemented,
			"basic authorization is not enabled for this application", nil)
	}

	aff, err := s.directory.Affiliations(r.Context(), user, pass)
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidCredentials) {
			return nil, domainauth.NewProtocolError(http.StatusForbidden,
				"invalid credentials provided", err)
		}
		s.logger.ErrorContext(r.Context(), "directory lookup failed", "uid", user, "error", err)
		return nil, domainauth.NewProtocolError(http.StatusInternalServerError,
			"could not perform directory authorization check, please try again later", err)
	}

	return domainauth.NewSession(domainauth.NewSessionInput{
		UID:        user,
		DN:         s.directory.UserDN(user),
		Projects:   aff.MemberOf,
		Committees: aff.OwnerOf,
	}, s.defaultDomain)
}

// BeginLoginResult carries the provider redirect for an initiated handshake.
type BeginLoginResult struct {
	AuthURL string
	State   string
}

// BeginLogin validates the optional returnTo target, records a pending state,
// and returns the identity provider URL to redirect the client to. The
// callback URL is built from the request host with HTTPS enforced.
func (s *AuthService) BeginLogin(r *http.Request, returnTo string) (*BeginLoginResult, error) {
	if returnTo != "" {
		// Reject before any state is created.
		if _, err := domainauth.ValidateRedirect(returnTo); err != nil {
			return nil, err
		}
	}
	if s.provider == nil {
		return nil, errors.New("no identity provider configured")
	}

	state, err := newStateToken()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	s.mu.Lock()
	s.pending[state] = pendingState{createdAt: s.now(), returnTo: returnTo}
	s.mu.Unlock()

	callbackURL := fmt.Sprintf("https://%s%s?state=%s", r.Host, s.endpointPath, url.QueryEscape(state))
	return &BeginLoginResult{
		AuthURL: s.provider.AuthorizeURL(state, callbackURL),
		State:   state,
	}, nil
}

// CompleteLoginResult carries the outcome of a finished handshake.
type CompleteLoginResult struct {
	Session  *domainauth.Session
	ReturnTo string
}

// CompleteLogin finishes a handshake: it consumes the pending state (exactly
// once, before the network exchange, closing the replay window), trades the
// code for an identity, and persists the session cookie.
func (s *AuthService) CompleteLogin(w http.ResponseWriter, r *http.Request, code, state string) (*CompleteLoginResult, error) {
	s.mu.Lock()
	entry, ok := s.pending[state]
	if ok {
		// Consume immediately; a concurrent callback on the same state must fail.
		delete(s.pending, state)
	}
	s.mu.Unlock()

	if !ok || s.now().Sub(entry.createdAt) > s.workflowTimeout {
		return nil, domainauth.ErrInvalidState
	}

	sess, err := s.provider.Exchange(r.Context(), code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := s.sessions.Write(w, r, sess); err != nil {
		return nil, fmt.Errorf("write session: %w", err)
	}
	return &CompleteLoginResult{Session: sess, ReturnTo: entry.returnTo}, nil
}

// Logout clears the session, idempotently.
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w, r)
}

// PendingLogin reports whether a handshake is pending for state and its
// recorded returnTo target. Primarily for tests and diagnostics.
func (s *AuthService) PendingLogin(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pending[state]
	return entry.returnTo, ok
}

// PrunePending removes pending states older than the workflow timeout and
// returns how many were dropped. Expired states are also rejected lazily at
// callback time; this exists so long-lived processes do not accumulate
// abandoned handshakes.
func (s *AuthService) PrunePending() int {
	deadline := s.now().Add(-s.workflowTimeout)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for state, entry := range s.pending {
		if entry.createdAt.Before(deadline) {
			delete(s.pending, state)
			removed++
		}
	}
	return removed
}

// newStateToken returns a cryptographically random opaque state token.
func newStateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
