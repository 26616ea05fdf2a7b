package server

import (
	"net/http"

	"github.com/urstruly/go-auth-broker/tenancy"
	"github.com/urstruly/go-auth-broker/token"
)

// SignInHandler begins the authorization-code + PKCE flow for a named
// provider. The tenant that initiated the flow and the validated return
// target are sealed into the signed state so the callback can trust them.
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerName := r.PathValue("provider")

		conn, err := s.registry.Conn(r.Context(), providerName)
		if err != nil {
			s.log.Warn().Err(err).Str("provider", providerName).Msg("sign-in begin failed")
			http.Error(w, "unknown provider", http.StatusNotFound)
			return
		}

		tenant := tenancy.Subdomain(originHost(r), s.baseDomain)

		// Only a validated tenant destination may ride along; anything else
		// is dropped here rather than carried into the flow.
		returnTarget := r.URL.Query().Get("callbackUrl")
		if returnTarget != "" && !s.validator.IsAllowedTenant(returnTarget) {
			returnTarget = ""
		}

		st := token.NewState(tenant, returnTarget)
		signedState, err := s.tokens.SignState(st)
		if err != nil {
			s.log.Error().Err(err).Msg("state signing failed")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		codeVerifier := generateRandomString(32)
		stateTTL := int(s.config.GetStateMaxAge().Seconds())

		s.setCrossSiteCookie(w, s.stateCookieName(), signedState, stateTTL)
		s.setCrossSiteCookie(w, s.pkceCookieName(), codeVerifier, stateTTL)
		if returnTarget != "" {
			s.setCrossSiteCookie(w, s.callbackCookieName(), encodeCookieURL(returnTarget), stateTTL)
		}

		authURL := conn.AuthCodeURL(signedState, st.Nonce, generateCodeChallenge(codeVerifier))
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}
