package server

import (
	"net/http"
	"net/url"
)

const (
	// tenantReturnCookieName holds each tenant's fallback return URL. It is
	// readable by front-end code, short-lived, and base-domain scoped.
	tenantReturnCookieName = "tenant-return"

	cookiePrefixSecure = "__Secure-"
	cookieBaseName     = "authbroker"
)

func (s *Server) cookieName(kind string) string {
	name := cookieBaseName + "." + kind
	if s.config.IsProduction() {
		return cookiePrefixSecure + name
	}
	return name
}

func (s *Server) sessionCookieName() string  { return s.cookieName("session-token") }
func (s *Server) callbackCookieName() string { return s.cookieName("callback-url") }
func (s *Server) stateCookieName() string    { return s.cookieName("state") }
func (s *Server) pkceCookieName() string     { return s.cookieName("pkce.code_verifier") }

// cookieDomain scopes shared cookies to the base domain in production so
// the session travels between tenant and auth hosts. In development the
// cookie stays host-only so it sticks on localhost.
func (s *Server) cookieDomain() string {
	if s.config.IsProduction() {
		return "." + s.baseDomain
	}
	return ""
}

// setSessionCookie writes the signed session token: HTTP-only, Lax, shared
// across the base domain in production.
func (s *Server) setSessionCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCookieName(),
		Value:    value,
		Path:     "/",
		Domain:   s.cookieDomain(),
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetSessionMaxAge().Seconds()),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCookieName(),
		Value:    "",
		Path:     "/",
		Domain:   s.cookieDomain(),
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// setCrossSiteCookie writes a flow cookie (state, PKCE verifier, callback
// URL). The provider's redirect back to us is cross-site, so production
// needs SameSite=None with Secure; development falls back to Lax so the
// cookie works without TLS.
func (s *Server) setCrossSiteCookie(w http.ResponseWriter, name, value string, maxAge int) {
	sameSite := http.SameSiteNoneMode
	if !s.config.IsProduction() {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.cookieDomain(),
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: sameSite,
		MaxAge:   maxAge,
	})
}

func (s *Server) clearCrossSiteCookie(w http.ResponseWriter, name string) {
	s.setCrossSiteCookie(w, name, "", -1)
}

// setTenantReturnCookie persists the tenant's post-login return pointer.
// Deliberately not HTTP-only: the tenant front end reads it.
func (s *Server) setTenantReturnCookie(w http.ResponseWriter, target string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tenantReturnCookieName,
		Value:    encodeCookieURL(target),
		Path:     "/",
		Domain:   "." + s.baseDomain,
		HttpOnly: false,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetReturnCookieMaxAge().Seconds()),
	})
}

func (s *Server) clearTenantReturnCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tenantReturnCookieName,
		Value:    "",
		Path:     "/",
		Domain:   "." + s.baseDomain,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// URL-bearing cookie values are percent-encoded so http.SetCookie never has
// to sanitize them.
func encodeCookieURL(raw string) string {
	return url.QueryEscape(raw)
}

func decodeCookieURL(v string) string {
	decoded, err := url.QueryUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}

func cookieURLValue(r *http.Request, name string) string {
	return decodeCookieURL(cookieValue(r, name))
}
