package roleaccounts

// Package roleaccounts implements the bearer-token verifier backed by a YAML
// registry of role accounts. Each entry maps a personal access token to a
// non-human identity used by automation.

import (
	"context"
	"crypto/subtle"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
)

// Account is one role account entry in the registry file.
type Account struct {
	Token string `yaml:"token"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Scope string `yaml:"scope"`
}

// Verifier resolves bearer tokens against the loaded registry.
type Verifier struct {
	accounts      map[string]Account // keyed by role account name
	defaultDomain string
}

// Load reads the YAML role account registry from path.
func Load(path, defaultDomain string) (*Verifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role accounts file: %w", err)
	}
	return Parse(data, defaultDomain)
}

// Parse builds a Verifier from raw YAML.
func Parse(data []byte, defaultDomain string) (*Verifier, error) {
	accounts := map[string]Account{}
	if err := yaml.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("parse role accounts: %w", err)
	}
	for name, acct := range accounts {
		if acct.Token == "" {
			return nil, fmt.Errorf("role account %q has no token", name)
		}
	}
	return &Verifier{accounts: accounts, defaultDomain: defaultDomain}, nil
}

// Verify returns the role-account session matching the token, or (nil, nil)
// when no account matches. Comparison is constant-time per entry.
func (v *Verifier) Verify(_ context.Context, token string) (*domainauth.Session, error) {
	if token == "" {
		return nil, nil
	}
	for name, acct := range v.accounts {
		if subtle.ConstantTimeCompare([]byte(acct.Token), []byte(token)) != 1 {
			continue
		}
		return domainauth.NewSession(domainauth.NewSessionInput{
			UID:           name,
			FullName:      acct.Name,
			Email:         acct.Email,
			IsRoleAccount: true,
			Metadata:      map[string]any{"scope": acct.Scope},
		}, v.defaultDomain)
	}
	return nil, nil
}
