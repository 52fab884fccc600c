package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses the foundation identity provider for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains identity provider configuration. The provider exposes
// two endpoints: an authorization URL the client is redirected to, and a token
// URL that trades an authorization code for identity data.
type OAuthConfig struct {
	AuthorizeURL string `env:"AUTHORIZE_URL" envDefault:"https://oauth.opencommons.net/auth-oidc"`
	TokenURL     string `env:"TOKEN_URL"     envDefault:"https://oauth.opencommons.net/token-oidc"`

	// EndpointPath is the local path serving login, logout, and callback.
	EndpointPath string `env:"ENDPOINT_PATH" envDefault:"/auth"`

	// WorkflowTimeout bounds how long a pending OAuth handshake stays valid.
	WorkflowTimeout time.Duration `env:"WORKFLOW_TIMEOUT" envDefault:"900s"`

	// ExchangeTimeout bounds the code-for-identity network exchange.
	ExchangeTimeout time.Duration `env:"EXCHANGE_TIMEOUT" envDefault:"15s"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UID      string `env:"UID"       envDefault:"dev-user"`
	FullName string `env:"FULLNAME"  envDefault:"Dev User"`
	Email    string `env:"EMAIL"     envDefault:"dev@example.com"`
	IsMember bool   `env:"IS_MEMBER" envDefault:"false"`
	IsChair  bool   `env:"IS_CHAIR"  envDefault:"false"`
	MFA      bool   `env:"MFA"       envDefault:"true"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// DefaultDomain is appended to the uid when the identity carries no email.
	DefaultDomain string `env:"AUTH_DEFAULT_DOMAIN" envDefault:"opencommons.net"`

	// RoleAccountsFile points at the YAML registry of role-account tokens.
	// Empty disables bearer-token authentication.
	RoleAccountsFile string `env:"AUTH_ROLE_ACCOUNTS_FILE" envDefault:""`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.OAuth.WorkflowTimeout <= 0 {
		a.OAuth.WorkflowTimeout = 900 * time.Second
	}
	if a.OAuth.ExchangeTimeout <= 0 {
		a.OAuth.ExchangeTimeout = 15 * time.Second
	}
	if !strings.HasPrefix(a.OAuth.EndpointPath, "/") {
		a.OAuth.EndpointPath = "/" + a.OAuth.EndpointPath
	}
}
