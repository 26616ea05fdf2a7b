package server

import (
	"net/http"
	"net/url"
)

// OAuthCallbackHandler completes the provider round trip: verify state,
// exchange the code under PKCE, run the sign-in decision, build the session
// token and bounce the browser back to the originating tenant. Every
// failure degrades to the sign-in page; no provider error detail reaches
// the browser.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerName := r.PathValue("provider")

		// r.FormValue covers both GET query params and form_post bodies.
		stateParam := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")

		if errorParam != "" {
			s.log.Info().Str("provider", providerName).Str("error", errorParam).Msg("provider returned error")
			s.failSignIn(w, r)
			return
		}
		if code == "" || stateParam == "" {
			s.failSignIn(w, r)
			return
		}

		// Double-submit check: the state must match the cookie we set when
		// the flow began, and its signature must verify.
		if stateParam != cookieValue(r, s.stateCookieName()) {
			s.log.Info().Str("provider", providerName).Msg("state cookie mismatch")
			s.failSignIn(w, r)
			return
		}
		st, err := s.tokens.VerifyState(stateParam)
		if err != nil {
			s.log.Info().Err(err).Str("provider", providerName).Msg("state verification failed")
			s.failSignIn(w, r)
			return
		}

		conn, err := s.registry.Conn(r.Context(), providerName)
		if err != nil {
			s.log.Warn().Err(err).Str("provider", providerName).Msg("callback for unknown provider")
			s.failSignIn(w, r)
			return
		}

		identity, err := conn.Exchange(r.Context(), code, cookieValue(r, s.pkceCookieName()), st.Nonce)
		if err != nil {
			s.log.Error().Err(err).Str("provider", providerName).Msg("identity exchange failed")
			s.failSignIn(w, r)
			return
		}

		if !s.broker.SignInOAuth(identity) {
			s.failSignIn(w, r)
			return
		}

		callbackURL := cookieURLValue(r, s.callbackCookieName())
		existing, _ := s.sessionFromRequest(r) // zero token on first login

		tok := s.broker.BuildToken(existing, identity, &st, callbackURL)
		signed, err := s.tokens.SignSession(tok)
		if err != nil {
			s.log.Error().Err(err).Msg("session signing failed")
			s.failSignIn(w, r)
			return
		}

		s.setSessionCookie(w, signed)
		s.clearCrossSiteCookie(w, s.stateCookieName())
		s.clearCrossSiteCookie(w, s.pkceCookieName())
		s.clearCrossSiteCookie(w, s.callbackCookieName())
		s.clearTenantReturnCookie(w)

		// Destination priority mirrors tenant derivation: state first, then
		// the staged callback cookie, then the tenant's landing page.
		requested := st.Return
		if requested == "" {
			requested = callbackURL
		}
		if requested == "" {
			requested = s.broker.TenantLanding(tok.Subdomain)
		}
		http.Redirect(w, r, s.broker.RedirectTarget(requested, requestOrigin(r)), http.StatusFound)
	}
}

// failSignIn returns the browser to the sign-in page on the auth host.
func (s *Server) failSignIn(w http.ResponseWriter, r *http.Request) {
	s.clearCrossSiteCookie(w, s.stateCookieName())
	s.clearCrossSiteCookie(w, s.pkceCookieName())
	http.Redirect(w, r, s.config.GetBaseURL()+"/", http.StatusFound)
}

func requestOrigin(r *http.Request) *url.URL {
	return &url.URL{Scheme: getScheme(r), Host: requestHost(r)}
}
