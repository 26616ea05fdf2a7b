package server

import "net/http"

// SignOutHandler destroys the session by clearing the cookie and bounces
// the browser to a validated destination. Sign-out of an absent session is
// a no-op redirect, not an error.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.clearSessionCookie(w)
		s.clearTenantReturnCookie(w)
		target := s.broker.RedirectTarget(r.FormValue("callbackUrl"), requestOrigin(r))
		http.Redirect(w, r, target, http.StatusFound)
	}
}
