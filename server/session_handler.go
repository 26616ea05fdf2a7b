package server

import (
	"encoding/json"
	"net/http"

	"github.com/urstruly/go-auth-broker/claims"
)

// SessionHandler serves the client-visible session projection. Every read
// rolls the session forward: claims are copied into a freshly signed token
// with a new expiry. Unauthenticated readers get an empty object, not an
// error.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, err := s.sessionFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}

		if signed, err := s.tokens.SignSession(tok); err == nil {
			s.setSessionCookie(w, signed)
		} else {
			s.log.Error().Err(err).Msg("session refresh failed")
		}

		writeJSON(w, http.StatusOK, s.broker.Session(tok))
	}
}

// SessionUpdateHandler is the authenticated update trigger: the only way,
// short of a fresh sign-in, that session claims change. The payload is
// merged through the shared allow-list; an unusable payload leaves the
// claims as they were and still returns a valid session.
func (s *Server) SessionUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, err := s.sessionFromRequest(r)
		if err != nil {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}

		var upd claims.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			// Stale-but-valid beats failing the request.
			s.log.Info().Err(err).Msg("unusable session update payload")
			upd = claims.Update{}
		}

		updated := s.broker.ApplyUpdate(tok, upd)
		signed, err := s.tokens.SignSession(updated)
		if err != nil {
			s.log.Error().Err(err).Msg("session signing failed, keeping prior session")
			writeJSON(w, http.StatusOK, s.broker.Session(tok))
			return
		}

		s.setSessionCookie(w, signed)
		writeJSON(w, http.StatusOK, s.broker.Session(updated))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
