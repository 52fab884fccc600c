package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionBackend selects where session records live.
type SessionBackend string

const (
	// SessionBackendCookie stores the whole session in a signed cookie blob.
	SessionBackendCookie SessionBackend = "cookie"
	// SessionBackendRedis stores sessions server-side keyed by an opaque
	// cookie ID, for deployments with more than one instance.
	SessionBackendRedis SessionBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "cookie", "redis":
		*b = SessionBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: cookie, redis)", v)
	}
}

// SessionConfig contains cookie session configuration.
type SessionConfig struct {
	// Backend selects the session store implementation.
	Backend SessionBackend `env:"BACKEND" envDefault:"cookie"`

	// IdleTTL is the sliding idle-expiry window: a session unused for longer
	// than this is deleted on the next read.
	IdleTTL time.Duration `env:"IDLE_TTL" envDefault:"168h"`

	// SecretFile is where the long-lived cookie signing secret is persisted.
	// If the file cannot be created, a fresh process-lifetime secret is used
	// and session permanence is degraded.
	SecretFile string `env:"SECRET_FILE" envDefault:"apptoken.txt"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"COOKIE_DOMAIN" envDefault:""`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.IdleTTL <= 0 {
		s.IdleTTL = 7 * 24 * time.Hour
	}
}
