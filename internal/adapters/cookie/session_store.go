package cookie

// Package cookie provides a signed-cookie session store. The whole session
// record travels in the cookie as an HS256-signed token, so no server-side
// storage is needed and sessions survive restarts as long as the signing
// secret does.

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
)

// SessionStore signs and verifies cookie-carried session records.
type SessionStore struct {
	appID   string
	secret  []byte
	idleTTL time.Duration
	domain  string
}

// Options groups constructor parameters for SessionStore.
type Options struct {
	// AppID discriminates this application's cookie from other apps sharing
	// the cookie domain.
	AppID string
	// Secret is the long-lived signing secret.
	Secret []byte
	// IdleTTL is the sliding idle-expiry window.
	IdleTTL time.Duration
	// CookieDomain is optional; empty uses the request domain.
	CookieDomain string
}

// NewSessionStore creates a signed-cookie session store.
func NewSessionStore(opts Options) (*SessionStore, error) {
	if opts.AppID == "" {
		return nil, errors.New("app ID is required")
	}
	if len(opts.Secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if opts.IdleTTL <= 0 {
		return nil, errors.New("idle TTL must be positive")
	}
	return &SessionStore{
		appID:   opts.AppID,
		secret:  opts.Secret,
		idleTTL: opts.IdleTTL,
		domain:  opts.CookieDomain,
	}, nil
}

// cookieName returns the per-application cookie name, so two gatehouse apps on
// one hostname never collide.
func (s *SessionStore) cookieName() string {
	return s.appID + "_session"
}

type sessionClaims struct {
	Session domainauth.Session `json:"sess"`
	jwt.RegisteredClaims
}

// Read returns the cookie session if present, signed correctly, and not idle
// expired. Expired or tampered records are cleared and treated as absent. On
// success the last-used timestamp is refreshed and the cookie rewritten.
func (s *SessionStore) Read(w http.ResponseWriter, r *http.Request) (*domainauth.Session, error) {
	c, err := r.Cookie(s.cookieName())
	if err != nil {
		return nil, nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		// Forged or stale-key cookie. Not an error to the caller, just absent.
		s.Clear(w, r)
		return nil, nil
	}

	sess := claims.Session
	if sess.UID == "" {
		s.Clear(w, r)
		return nil, nil
	}

	if time.Since(sess.LastUsedAt) > s.idleTTL {
		s.Clear(w, r)
		return nil, nil
	}

	// Sliding expiry: the session was used, so stamp it and re-sign.
	sess.LastUsedAt = time.Now()
	if err := s.Write(w, r, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Write serializes the session into the signed cookie, stamping the current
// time as last-used. Any prior record for this application is overwritten.
func (s *SessionStore) Write(w http.ResponseWriter, r *http.Request, sess *domainauth.Session) error {
	if sess == nil || sess.UID == "" {
		return domainauth.ErrEmptyUID
	}

	stamped := *sess
	if stamped.LastUsedAt.IsZero() {
		stamped.LastUsedAt = time.Now()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &sessionClaims{
		Session: stamped,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.appID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(),
		Value:    signed,
		Path:     "/",
		Domain:   s.domain,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.idleTTL.Seconds()),
	})
	return nil
}

// Clear removes the application's session cookie, idempotently.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(),
		Value:    "",
		Path:     "/",
		Domain:   s.domain,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

func (s *SessionStore) keyFunc(_ *jwt.Token) (any, error) {
	return s.secret, nil
}

// isSecure mirrors the attribute used when setting cookies behind a TLS
// terminating proxy.
func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
