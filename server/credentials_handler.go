package server

import (
	"encoding/json"
	"net/http"

	"github.com/urstruly/go-auth-broker/providers"
	"github.com/urstruly/go-auth-broker/tenancy"
)

// CredentialsSignInHandler performs the credentials exchange: resolve the
// user via the external backend, then issue a session exactly as the OAuth
// path does. The response is JSON carrying the post-login destination, in
// the shape credential-posting front ends expect.
func (s *Server) CredentialsSignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.credentialsRejected(w)
			return
		}

		creds := providers.Credentials{
			BrandID:    r.FormValue("brandId"),
			UserData:   r.FormValue("userData"),
			Email:      r.FormValue("email"),
			Password:   r.FormValue("password"),
			Token:      r.FormValue("token"),
			Credential: r.FormValue("credential"),
		}

		// Tenant comes from where the flow started, never from the
		// unauthenticated payload.
		callbackURL := r.FormValue("callbackUrl")
		tenant := tenancy.Subdomain(originHost(r), s.baseDomain)
		if tenant == "" {
			tenant = s.broker.DeriveTenant(nil, callbackURL)
		}

		user, ok := s.broker.SignInCredentials(r.Context(), creds, tenant)
		if !ok {
			s.credentialsRejected(w)
			return
		}

		existing, _ := s.sessionFromRequest(r)
		tok := s.broker.BuildToken(existing, *user, nil, callbackURL)
		if tenant != "" {
			tok.Subdomain = tenant
		}

		signed, err := s.tokens.SignSession(tok)
		if err != nil {
			s.log.Error().Err(err).Msg("session signing failed")
			s.credentialsRejected(w)
			return
		}
		s.setSessionCookie(w, signed)
		s.clearTenantReturnCookie(w)

		requested := callbackURL
		if requested == "" {
			requested = cookieURLValue(r, tenantReturnCookieName)
		}
		if requested == "" {
			requested = s.broker.TenantLanding(tok.Subdomain)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"url": s.broker.RedirectTarget(requested, requestOrigin(r)),
		})
	}
}

// credentialsRejected is the single failure response for the credentials
// path: a 401 pointing back at the sign-in page, with no detail about why.
func (s *Server) credentialsRejected(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"url": s.config.GetBaseURL() + "/?error=CredentialsSignin",
	})
}
