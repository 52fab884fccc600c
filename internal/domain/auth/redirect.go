package auth

import (
	"net/url"
	"strings"
)

// ValidateRedirect checks a user-supplied "return to" target against the
// same-origin policy: it must be a relative path starting with exactly one
// forward slash. Anything else (protocol-relative //host, javascript:, data:,
// absolute URLs, or an empty string) is rejected with ErrInvalidRedirect.
//
// This is the sole defense against open-redirect and reflected-script
// injection via the login=/logout= query parameters, so the checks are
// deliberately belt and braces.
func ValidateRedirect(candidate string) (string, error) {
	if candidate == "" {
		return "", ErrInvalidRedirect
	}
	if !strings.HasPrefix(candidate, "/") {
		return "", ErrInvalidRedirect
	}
	// "//evil.com" is protocol-relative and attacker-controlled, and browsers
	// normalize "/\" into "//" before resolving.
	if strings.HasPrefix(candidate, "//") || strings.Contains(candidate, "\\") {
		return "", ErrInvalidRedirect
	}
	// A colon before the first slash would be a scheme; the leading "/" already
	// rules that out, but url.Parse catches anything stranger.
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Scheme != "" || u.Host != "" {
		return "", ErrInvalidRedirect
	}
	return candidate, nil
}
