package config

import "time"

// LDAPConfig contains directory configuration for basic-auth credential
// verification and project affiliation lookups.
type LDAPConfig struct {
	// URI is the directory server address, e.g. "ldaps://ldap.example.org:636".
	URI string `env:"URI" envDefault:"ldaps://ldap.opencommons.net:636"`

	// UserDNTemplate turns a uid into a bind DN; %s is replaced by the uid.
	UserDNTemplate string `env:"USER_DN_TEMPLATE" envDefault:"uid=%s,ou=people,dc=opencommons,dc=net"`

	// GroupBase is the subtree searched for project groups.
	GroupBase string `env:"GROUP_BASE" envDefault:"ou=project,ou=groups,dc=opencommons,dc=net"`

	// MemberAttr and OwnerAttr are the group attributes referencing user DNs.
	MemberAttr string `env:"MEMBER_ATTR" envDefault:"member"`
	OwnerAttr  string `env:"OWNER_ATTR"  envDefault:"owner"`

	// CacheTTL bounds how long affiliation lookups are cached per user.
	// Authentication itself is never cached.
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	// Timeout bounds each directory operation.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// Sanitize applies guardrails to LDAP configuration values.
func (l *LDAPConfig) Sanitize() {
	if l.CacheTTL <= 0 {
		l.CacheTTL = time.Hour
	}
	if l.Timeout <= 0 {
		l.Timeout = 15 * time.Second
	}
}
