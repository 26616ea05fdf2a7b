// Package tenancy classifies request hosts and extracts tenant labels.
package tenancy

import "strings"

// Kind classifies a request host relative to the configured base domain.
type Kind int

const (
	KindUnknown Kind = iota
	KindBase
	KindAuth
	KindTenant
)

// AuthLabel is the reserved subdomain of the central auth host.
const AuthLabel = "auth"

// reserved labels never resolve to a tenant
var reserved = map[string]struct{}{
	"www":     {},
	AuthLabel: {},
}

// Normalize strips any port suffix and lower-cases a Host header value.
func Normalize(host string) string {
	host = strings.TrimSpace(host)
	host, _, _ = strings.Cut(host, ":")
	return strings.ToLower(host)
}

// Subdomain extracts the tenant label from host under baseDomain.
// It is a total function: absence of a tenant is the empty string, never an
// error. Reserved labels ("www", "auth") and hosts outside the base domain
// yield "".
func Subdomain(host, baseDomain string) string {
	host = Normalize(host)
	baseDomain = Normalize(baseDomain)
	if host == "" || baseDomain == "" {
		return ""
	}
	if host == baseDomain {
		return "" // apex, not a tenant
	}
	if !strings.HasSuffix(host, "."+baseDomain) {
		return "" // unrelated host, caller treats as unknown
	}
	prefix := strings.TrimSuffix(host, "."+baseDomain)
	label, _, _ := strings.Cut(prefix, ".")
	if label == "" {
		return ""
	}
	if _, ok := reserved[label]; ok {
		return ""
	}
	return label
}

// Classify reports what kind of host this is and, for tenant hosts, the
// tenant label.
func Classify(host, baseDomain string) (Kind, string) {
	h := Normalize(host)
	base := Normalize(baseDomain)
	switch {
	case h == "" || base == "":
		return KindUnknown, ""
	case h == base:
		return KindBase, ""
	case h == AuthLabel+"."+base:
		return KindAuth, ""
	}
	if tenant := Subdomain(h, base); tenant != "" {
		return KindTenant, tenant
	}
	return KindUnknown, ""
}

// AuthHost returns the central auth host for a base domain.
func AuthHost(baseDomain string) string {
	return AuthLabel + "." + Normalize(baseDomain)
}
