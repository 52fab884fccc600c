package ldap

// Package ldap provides the directory adapter used for basic-auth credential
// verification and project affiliation lookups, plus a bounded-TTL cache for
// the latter.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goldap "github.com/go-ldap/ldap/v3"

	"github.com/opencommons/gatehouse/config"
	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
)

// Directory performs binds and group searches against an LDAP server.
type Directory struct {
	cfg  config.LDAPConfig
	dial func(ctx context.Context) (Conn, error)
}

// Conn is the subset of the go-ldap connection used by Directory. It allows
// tests to substitute a fake server.
type Conn interface {
	Bind(username, password string) error
	Search(req *goldap.SearchRequest) (*goldap.SearchResult, error)
	Close() error
}

// NewDirectory creates a Directory speaking to the configured LDAP server.
func NewDirectory(cfg config.LDAPConfig) *Directory {
	return &Directory{
		cfg: cfg,
		dial: func(ctx context.Context) (Conn, error) {
			conn, err := goldap.DialURL(cfg.URI)
			if err != nil {
				return nil, err
			}
			conn.SetTimeout(cfg.Timeout)
			return conn, nil
		},
	}
}

// NewDirectoryWithDialer creates a Directory with a custom dialer, for tests.
func NewDirectoryWithDialer(cfg config.LDAPConfig, dial func(ctx context.Context) (Conn, error)) *Directory {
	return &Directory{cfg: cfg, dial: dial}
}

// UserDN expands the configured DN template for a uid.
func (d *Directory) UserDN(uid string) string {
	return fmt.Sprintf(d.cfg.UserDNTemplate, uid)
}

// Bind verifies the uid/password pair with a bind-only connection.
func (d *Directory) Bind(ctx context.Context, uid, password string) error {
	conn, err := d.dial(ctx)
	if err != nil {
		return fmt.Errorf("ldap dial: %w", err)
	}
	defer conn.Close()

	return mapBindError(conn.Bind(d.UserDN(uid), password))
}

// Affiliations binds as the user and searches the group base for entries whose
// member/owner attributes reference the user's DN, partitioning group names
// into member and owner sets.
func (d *Directory) Affiliations(ctx context.Context, uid, password string) (domainauth.Affiliations, error) {
	var aff domainauth.Affiliations

	conn, err := d.dial(ctx)
	if err != nil {
		return aff, fmt.Errorf("ldap dial: %w", err)
	}
	defer conn.Close()

	dn := d.UserDN(uid)
	if err := mapBindError(conn.Bind(dn, password)); err != nil {
		return aff, err
	}

	filter := fmt.Sprintf("(|(%s=%s)(%s=%s))",
		d.cfg.MemberAttr, goldap.EscapeFilter(dn),
		d.cfg.OwnerAttr, goldap.EscapeFilter(dn),
	)
	req := goldap.NewSearchRequest(
		d.cfg.GroupBase,
		goldap.ScopeWholeSubtree,
		goldap.NeverDerefAliases,
		0, int(d.cfg.Timeout.Seconds()), false,
		filter,
		[]string{d.cfg.MemberAttr, d.cfg.OwnerAttr},
		nil,
	)

	res, err := conn.Search(req)
	if err != nil {
		return aff, fmt.Errorf("ldap search: %w", err)
	}
	if res == nil || len(res.Entries) == 0 {
		return aff, errors.New("empty result set returned by directory")
	}

	for _, entry := range res.Entries {
		name := groupName(entry.DN)
		if name == "" {
			continue
		}
		if containsValue(entry.GetAttributeValues(d.cfg.MemberAttr), dn) {
			aff.MemberOf = append(aff.MemberOf, name)
		}
		if containsValue(entry.GetAttributeValues(d.cfg.OwnerAttr), dn) {
			aff.OwnerOf = append(aff.OwnerOf, name)
		}
	}
	return aff, nil
}

// mapBindError translates a rejected bind into the domain credential error so
// callers can distinguish 403 from infrastructure failures.
func mapBindError(err error) error {
	if err == nil {
		return nil
	}
	if goldap.IsErrorWithCode(err, goldap.LDAPResultInvalidCredentials) {
		return domainauth.ErrInvalidCredentials
	}
	return fmt.Errorf("ldap bind: %w", err)
}

// groupName extracts the leading RDN value of a group DN, e.g.
// "cn=httpd,ou=project,..." yields "httpd".
func groupName(dn string) string {
	first, _, _ := strings.Cut(dn, ",")
	_, value, found := strings.Cut(first, "=")
	if !found {
		return strings.TrimSpace(first)
	}
	return strings.TrimSpace(value)
}

func containsValue(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
