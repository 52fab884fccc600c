package devauth

// Package devauth provides a config-driven identity provider for local
// development. It short-circuits the OAuth handshake by redirecting straight
// back to our own callback and returning a fixed identity on exchange.

import (
	"context"
	"errors"
	"net/url"

	"github.com/opencommons/gatehouse/config"
	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
)

// Provider implements ports.IdentityProvider for local development.
type Provider struct {
	cfg           config.DevAuthConfig
	defaultDomain string
}

// NewProvider constructs a dev identity provider.
func NewProvider(cfg config.DevAuthConfig, defaultDomain string) (*Provider, error) {
	if cfg.UID == "" {
		return nil, errors.New("dev auth: UID is required")
	}
	return &Provider{cfg: cfg, defaultDomain: defaultDomain}, nil
}

// AuthorizeURL redirects straight back to the callback with a dev code, so
// the normal state bookkeeping still runs.
func (p *Provider) AuthorizeURL(state, callbackURL string) string {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return callbackURL
	}
	q := u.Query()
	q.Set("code", "dev")
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

// Exchange ignores the code and returns the configured identity.
func (p *Provider) Exchange(_ context.Context, _ string) (*domainauth.Session, error) {
	return domainauth.NewSession(domainauth.NewSessionInput{
		UID:         p.cfg.UID,
		FullName:    p.cfg.FullName,
		Email:       p.cfg.Email,
		IsMember:    p.cfg.IsMember,
		IsChair:     p.cfg.IsChair,
		MFAVerified: p.cfg.MFA,
	}, p.defaultDomain)
}
