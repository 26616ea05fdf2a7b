package server

import (
	"net/http"
	"net/url"

	"github.com/urstruly/go-auth-broker/tenancy"
)

// AuthMiddleware runs only on the central auth host. Once a session exists
// it bounces the browser back to the originating tenant, choosing among the
// return-target candidates in trust order: explicit query parameter, stored
// callback cookie, tenant-return fallback cookie. Whatever is chosen must
// pass the redirect validator; when nothing does, the auth host renders its
// own page.
func (s *Server) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, _ := tenancy.Classify(requestHost(r), s.baseDomain)
		if kind != tenancy.KindAuth {
			next(w, r)
			return
		}

		// Never touch the authentication protocol itself.
		if isAuthPath(r.URL.Path) {
			next(w, r)
			return
		}

		candidates := []string{
			r.URL.Query().Get("callbackUrl"),
			cookieURLValue(r, s.callbackCookieName()),
			cookieURLValue(r, tenantReturnCookieName),
		}

		if _, err := s.sessionFromRequest(r); err != nil {
			// Unauthenticated: pre-stage the first valid candidate for
			// after login, but never bounce the browser away from the
			// sign-in page.
			if target := s.pickReturnTarget(r, candidates); target != "" {
				s.setCrossSiteCookie(w, s.callbackCookieName(), encodeCookieURL(target),
					int(s.config.GetStateMaxAge().Seconds()))
			}
			next(w, r)
			return
		}

		target := s.pickReturnTarget(r, candidates)
		if target == "" {
			next(w, r)
			return
		}

		// Consume the staged cookies atomically with the redirect so a
		// replayed request (back button) cannot re-trigger it.
		s.clearCrossSiteCookie(w, s.callbackCookieName())
		s.clearTenantReturnCookie(w)
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// pickReturnTarget returns the first candidate that validates as a tenant
// destination and is not the URL currently being served.
func (s *Server) pickReturnTarget(r *http.Request, candidates []string) string {
	current := &url.URL{Scheme: getScheme(r), Host: requestHost(r), Path: r.URL.Path, RawQuery: r.URL.RawQuery}
	for _, c := range candidates {
		if c == "" || !s.validator.IsAllowedTenant(c) {
			continue
		}
		if t, err := url.Parse(c); err == nil && t.String() == current.String() {
			continue
		}
		return c
	}
	return ""
}
