package redis

// Package redis provides a server-side session store for deployments running
// more than one instance behind a shared cookie domain. The cookie carries
// only an opaque session ID; the record itself lives in Redis with a sliding
// TTL matching the idle-expiry window.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
)

// SessionStore is a Redis-based session store.
type SessionStore struct {
	client  redis.UniversalClient
	appID   string
	idleTTL time.Duration
	domain  string
}

// Options groups constructor parameters for SessionStore.
type Options struct {
	Client       redis.UniversalClient
	AppID        string
	IdleTTL      time.Duration
	CookieDomain string
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(opts Options) (*SessionStore, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if opts.AppID == "" {
		return nil, errors.New("app ID is required")
	}
	if opts.IdleTTL <= 0 {
		return nil, errors.New("idle TTL must be positive")
	}
	return &SessionStore{
		client:  opts.Client,
		appID:   opts.AppID,
		idleTTL: opts.IdleTTL,
		domain:  opts.CookieDomain,
	}, nil
}

func (s *SessionStore) cookieName() string { return s.appID + "_session" }

func (s *SessionStore) key(id string) string { return "session:" + s.appID + ":" + id }

// Read looks up the session record referenced by the cookie. An absent,
// expired, or corrupt record is treated as no session; on success the record's
// last-used timestamp is refreshed and its TTL extended.
func (s *SessionStore) Read(w http.ResponseWriter, r *http.Request) (*domainauth.Session, error) {
	c, err := r.Cookie(s.cookieName())
	if err != nil || c.Value == "" {
		return nil, nil
	}

	ctx := r.Context()
	data, err := s.client.Get(ctx, s.key(c.Value)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.clearCookie(w, r)
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		// Corrupt record, drop it.
		_ = s.client.Del(ctx, s.key(c.Value)).Err()
		s.clearCookie(w, r)
		return nil, nil
	}

	// Redis TTL enforces idle expiry, but check the stamp too in case the
	// record was written with a longer TTL by an older build.
	if time.Since(sess.LastUsedAt) > s.idleTTL {
		_ = s.client.Del(ctx, s.key(c.Value)).Err()
		s.clearCookie(w, r)
		return nil, nil
	}

	sess.LastUsedAt = time.Now()
	if err := s.save(ctx, c.Value, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Write stores the session under a fresh opaque ID and points the cookie at it.
func (s *SessionStore) Write(w http.ResponseWriter, r *http.Request, sess *domainauth.Session) error {
	if sess == nil || sess.UID == "" {
		return domainauth.ErrEmptyUID
	}

	stamped := *sess
	stamped.LastUsedAt = time.Now()

	id := uuid.NewString()
	if err := s.save(r.Context(), id, &stamped); err != nil {
		return err
	}

	// Drop any record the cookie pointed at before; Write always overwrites.
	if prev, err := r.Cookie(s.cookieName()); err == nil && prev.Value != "" {
		_ = s.client.Del(r.Context(), s.key(prev.Value)).Err()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(),
		Value:    id,
		Path:     "/",
		Domain:   s.domain,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.idleTTL.Seconds()),
	})
	return nil
}

// Clear removes the session record and cookie, idempotently.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.cookieName()); err == nil && c.Value != "" {
		_ = s.client.Del(r.Context(), s.key(c.Value)).Err()
	}
	s.clearCookie(w, r)
}

func (s *SessionStore) save(ctx context.Context, id string, sess *domainauth.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.key(id), data, s.idleTTL).Err()
}

func (s *SessionStore) clearCookie(w http.ResponseWriter, r *http.Request) {
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

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
