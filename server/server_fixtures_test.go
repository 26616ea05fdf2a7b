package server_test

import (
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/urstruly/go-auth-broker/claims"
	"github.com/urstruly/go-auth-broker/internal/config"
	"github.com/urstruly/go-auth-broker/server"
	"github.com/urstruly/go-auth-broker/token"
)

const (
	secretStr  = "0123456789abcdef0123456789abcdef"
	baseDomain = "example.com"

	sessionCookieName  = "__Secure-authbroker.session-token"
	callbackCookieName = "__Secure-authbroker.callback-url"
	returnCookieName   = "tenant-return"
)

// testFixture holds the server under test and a token manager sharing its
// signing secret, for minting session cookies in tests.
type testFixture struct {
	server *server.Server
	tokens *token.Manager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	t.Setenv("BASE_DOMAIN", baseDomain)
	t.Setenv("AUTH_SESSION_SECRET", secretStr)
	t.Setenv("ENV", "production")

	cfg := config.New()
	srv, err := server.New(cfg, zerolog.Nop())
	require.NoError(t, err)

	tm, err := token.New(secretStr, cfg.GetSessionMaxAge(), cfg.GetStateMaxAge())
	require.NoError(t, err)

	return &testFixture{server: srv, tokens: tm}
}

// sessionCookie mints a valid session cookie for the given claims.
func (f *testFixture) sessionCookie(t *testing.T, tok claims.SessionToken) *http.Cookie {
	t.Helper()
	signed, err := f.tokens.SignSession(tok)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookieName, Value: signed}
}

// findCookie returns the response cookie with the given name, or nil.
func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
