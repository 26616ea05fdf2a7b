// Package redirect is the single gate for every redirect decision the broker
// makes. Raw destinations can originate from attacker-controlled query
// parameters, so validation is centralized here rather than re-implemented at
// call sites.
package redirect

import (
	"net/url"
	"strings"

	"github.com/urstruly/go-auth-broker/tenancy"
)

// Validator decides whether a candidate destination URL is safe to send a
// browser to.
type Validator struct {
	baseDomain string
	allowHTTP  bool // development only
}

// New creates a Validator for baseDomain. allowHTTP permits plain-HTTP
// targets and must be false in production.
func New(baseDomain string, allowHTTP bool) *Validator {
	return &Validator{
		baseDomain: tenancy.Normalize(baseDomain),
		allowHTTP:  allowHTTP,
	}
}

// IsAllowed reports whether candidate is an HTTPS URL on the base domain or
// one of its subdomains. Malformed input is never allowed.
func (v *Validator) IsAllowed(candidate string) bool {
	u, ok := v.parse(candidate)
	if !ok {
		return false
	}
	return v.hostAllowed(u.Hostname())
}

// IsAllowedTenant is IsAllowed with the auth host additionally excluded,
// for targets that must land on a tenant (or the apex), never back on the
// auth host itself.
func (v *Validator) IsAllowedTenant(candidate string) bool {
	u, ok := v.parse(candidate)
	if !ok {
		return false
	}
	host := tenancy.Normalize(u.Hostname())
	if host == tenancy.AuthHost(v.baseDomain) {
		return false
	}
	return v.hostAllowed(host)
}

// Resolve interprets candidate relative to base (the requesting origin) and
// returns the absolute destination. Same-origin targets are always allowed;
// anything else must pass IsAllowed. ok is false when no safe destination
// exists.
func (v *Validator) Resolve(candidate string, base *url.URL) (string, bool) {
	if base == nil {
		if v.IsAllowed(candidate) {
			return candidate, true
		}
		return "", false
	}
	target, err := base.Parse(candidate)
	if err != nil {
		return "", false
	}
	if sameOrigin(target, base) {
		return target.String(), true
	}
	if v.IsAllowed(target.String()) {
		return target.String(), true
	}
	return "", false
}

func (v *Validator) parse(candidate string) (*url.URL, bool) {
	if candidate == "" {
		return nil, false
	}
	u, err := url.Parse(candidate)
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return nil, false
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !v.allowHTTP {
			return nil, false
		}
	default:
		return nil, false
	}
	return u, true
}

func (v *Validator) hostAllowed(hostname string) bool {
	host := tenancy.Normalize(hostname)
	return host == v.baseDomain || strings.HasSuffix(host, "."+v.baseDomain)
}

func sameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Host == b.Host
}
