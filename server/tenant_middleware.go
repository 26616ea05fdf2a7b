package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/urstruly/go-auth-broker/broker"
	"github.com/urstruly/go-auth-broker/tenancy"
)

// TenantMiddleware is the per-request routing layer that runs on every
// host. It proxies authentication-protocol paths to the central auth host,
// enforces sessions on protected tenant paths, tags requests with the
// resolved tenant, and maintains the tenant-return fallback cookie.
//
// Host parse failures fall back to "unknown tenant": no tenant header is
// set (fail-closed for tagging) and the request otherwise passes through
// (fail-open for routing).
func (s *Server) TenantMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host := requestHost(r)
		kind, tenant := tenancy.Classify(host, s.baseDomain)

		// Authentication-protocol paths belong to the auth host. Passing
		// through when already there guards against a rewrite loop.
		if isAuthPath(r.URL.Path) {
			if kind == tenancy.KindAuth {
				next(w, r)
				return
			}
			s.authProxy.ServeHTTP(w, r)
			return
		}

		if kind == tenancy.KindAuth {
			next(w, r)
			return
		}

		if isProtectedPath(r.URL.Path) {
			tok, err := s.sessionFromRequest(r)
			switch {
			case err != nil:
				// No valid session: back to this tenant's own landing page,
				// never straight to the auth host.
				http.Redirect(w, r, tenantRoot(getScheme(r), host), http.StatusFound)
				return
			case tenant != "" && tok.Subdomain != "" && tok.Subdomain != tenant:
				// Session was issued for another tenant. Sessions are
				// tenant-exclusive even though the signing key is shared.
				s.log.Info().Str("session_tenant", tok.Subdomain).Str("host_tenant", tenant).
					Msg("foreign session rejected")
				http.Redirect(w, r, tenantRoot(getScheme(r), host), http.StatusFound)
				return
			}
		}

		if tenant != "" {
			r.Header.Set(HeaderTenant, tenant)
		}

		// Stage the return pointer for hosts under the base domain so the
		// auth host can bounce the browser back after login.
		if kind == tenancy.KindTenant || kind == tenancy.KindBase {
			if cookieValue(r, tenantReturnCookieName) == "" {
				s.setTenantReturnCookie(w, fmt.Sprintf("https://%s%s", host, broker.SocialLoginPath))
			}
		}

		next(w, r)
	}
}

// newAuthProxy builds the fixed-destination proxy that carries
// authentication-protocol requests from tenant hosts to the auth host.
// Proxying rather than redirecting preserves method and body for POST
// callbacks.
func (s *Server) newAuthProxy() *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			s.rewriteAuthProxyRequest(pr.Out, pr.In)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.log.Error().Err(err).Str("path", r.URL.Path).Msg("auth proxy error")
			http.Error(w, "bad gateway", http.StatusBadGateway)
		},
	}
}

// rewriteAuthProxyRequest points an outbound request at the auth host and
// records where it came from.
func (s *Server) rewriteAuthProxyRequest(out, in *http.Request) {
	out.URL = &url.URL{
		Scheme:   "https",
		Host:     s.authHost,
		Path:     in.URL.Path,
		RawQuery: in.URL.RawQuery,
	}
	out.Host = s.authHost
	out.Header.Set(HeaderTenantOrigin, requestHost(in))
}

func tenantRoot(scheme, host string) string {
	return fmt.Sprintf("%s://%s/", scheme, host)
}
