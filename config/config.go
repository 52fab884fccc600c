package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: identity provider and bearer-token configuration
//   - session.go: cookie session configuration
//   - ldap.go: directory (LDAP) configuration
//   - http.go: HTTP server configuration
type AppConfig struct {
	// AppID discriminates this application's session cookie from other
	// gatehouse apps sharing the same cookie domain.
	AppID string `env:"APP_ID" envDefault:"gatehouse"`

	// IsDev controls development mode behavior.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Auth holds identity provider configuration.
	Auth AuthConfig

	// Session holds cookie session configuration.
	Session SessionConfig `envPrefix:"SESSION_"`

	// LDAP holds directory configuration.
	LDAP LDAPConfig `envPrefix:"LDAP_"`

	// Redis holds connection settings for the server-side session backend.
	Redis RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration.
	HTTP HTTPConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.Session.Sanitize()
	c.LDAP.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and ENV environment variables.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		envName := strings.ToLower(os.Getenv("ENV"))
		c.IsDev = envName == "development" || envName == "dev"
	}
}
