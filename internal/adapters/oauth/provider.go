package oauth

// Package oauth implements the identity provider adapter for the foundation's
// OAuth service. The provider is deliberately not a generic OAuth/OIDC client:
// it speaks the two fixed endpoints the foundation exposes, an authorization
// URL the client is redirected to and a token URL that trades the callback
// code for identity data as JSON.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/opencommons/gatehouse/config"
	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
)

// Provider exchanges authorization codes against the foundation OAuth service.
type Provider struct {
	authorizeURL  string
	tokenURL      string
	defaultDomain string
	client        *http.Client
}

// NewProvider creates a Provider from OAuth configuration.
func NewProvider(cfg config.OAuthConfig, defaultDomain string) (*Provider, error) {
	if cfg.AuthorizeURL == "" {
		return nil, errors.New("authorize URL is required")
	}
	if cfg.TokenURL == "" {
		return nil, errors.New("token URL is required")
	}
	timeout := cfg.ExchangeTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Provider{
		authorizeURL:  cfg.AuthorizeURL,
		tokenURL:      cfg.TokenURL,
		defaultDomain: defaultDomain,
		client:        &http.Client{Timeout: timeout},
	}, nil
}

// AuthorizeURL builds the provider redirect target for a handshake.
func (p *Provider) AuthorizeURL(state, callbackURL string) string {
	q := url.Values{}
	q.Set("state", state)
	q.Set("redirect_uri", callbackURL)
	return p.authorizeURL + "?" + q.Encode()
}

// identityPayload mirrors the JSON document the token endpoint returns on a
// successful exchange.
type identityPayload struct {
	UID        string         `json:"uid"`
	DN         string         `json:"dn"`
	FullName   string         `json:"fullname"`
	Email      string         `json:"email"`
	IsMember   bool           `json:"isMember"`
	IsChair    bool           `json:"isChair"`
	IsRoot     bool           `json:"isRoot"`
	Committees []string       `json:"committees"`
	Projects   []string       `json:"projects"`
	MFA        bool           `json:"mfa"`
	Metadata   map[string]any `json:"metadata"`
}

// Exchange trades an authorization code for the authenticated identity.
// A non-2xx or malformed response is a hard failure for this request; the
// exchange is never retried here.
func (p *Provider) Exchange(ctx context.Context, code string) (*domainauth.Session, error) {
	if code == "" {
		return nil, errors.New("authorization code is required")
	}

	q := url.Values{}
	q.Set("code", code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.tokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	var payload identityPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	sess, err := domainauth.NewSession(domainauth.NewSessionInput{
		UID:         payload.UID,
		DN:          payload.DN,
		FullName:    payload.FullName,
		Email:       payload.Email,
		IsMember:    payload.IsMember,
		IsChair:     payload.IsChair,
		IsRoot:      payload.IsRoot,
		Committees:  payload.Committees,
		Projects:    payload.Projects,
		MFAVerified: payload.MFA,
		Metadata:    payload.Metadata,
	}, p.defaultDomain)
	if err != nil {
		return nil, fmt.Errorf("token response: %w", err)
	}
	return sess, nil
}
