package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urstruly/go-auth-broker/claims"
)

func TestSessionEndpointUnauthenticated(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest("GET", "https://auth.example.com/api/auth/session", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.JSONEq(t, "{}", rec.Body.String())
}

func TestSessionEndpointProjectsClaims(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest("GET", "https://auth.example.com/api/auth/session", nil)
	req.AddCookie(f.sessionCookie(t, claims.SessionToken{
		Name:         "John",
		Email:        "john@acme.test",
		Subdomain:    "acme",
		RefreshToken: "refresh-secret",
	}))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	var session map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.Equal(t, "John", session["name"])
	require.Equal(t, "acme", session["subdomain"])
	require.NotContains(t, session, "refreshToken")

	// Every read refreshes the session cookie.
	refreshed := findCookie(rec.Result(), sessionCookieName)
	require.NotNil(t, refreshed)
	tok, err := f.tokens.VerifySession(refreshed.Value)
	require.NoError(t, err)
	require.Equal(t, "John", tok.Name)
	require.Equal(t, "refresh-secret", tok.RefreshToken) // kept server-side
}

func TestSessionUpdateRequiresAuth(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest("POST", "https://auth.example.com/api/auth/session",
		strings.NewReader(`{"role":"admin"}`))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 401, rec.Code)
}

func TestSessionUpdateMergesAllowListedFields(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest("POST", "https://auth.example.com/api/auth/session",
		strings.NewReader(`{"role":"admin","theme":"dark","isSuperAdmin":true}`))
	req.AddCookie(f.sessionCookie(t, claims.SessionToken{Name: "John", Subdomain: "acme"}))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	refreshed := findCookie(rec.Result(), sessionCookieName)
	require.NotNil(t, refreshed)
	tok, err := f.tokens.VerifySession(refreshed.Value)
	require.NoError(t, err)
	require.Equal(t, "admin", tok.Role)
	require.Equal(t, "dark", tok.Theme)
	require.Equal(t, "acme", tok.Subdomain) // untouched by the payload
}

func TestSessionUpdateBadPayloadKeepsClaims(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest("POST", "https://auth.example.com/api/auth/session",
		strings.NewReader(`{not json`))
	req.AddCookie(f.sessionCookie(t, claims.SessionToken{Name: "John", Role: "member"}))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	// Stale-but-valid: the request succeeds with unchanged claims.
	require.Equal(t, 200, rec.Code)

	var session map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.Equal(t, "member", session["role"])
}

func TestSignOutClearsSessionAndValidatesTarget(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest("POST", "https://auth.example.com/api/auth/signout?callbackUrl="+
		url.QueryEscape("https://acme.example.com/"), nil)
	req.AddCookie(f.sessionCookie(t, claims.SessionToken{Subdomain: "acme"}))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 302, rec.Code)
	require.Equal(t, "https://acme.example.com/", rec.Header().Get("Location"))

	cleared := findCookie(rec.Result(), sessionCookieName)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)
}

func TestSignOutEvilTargetFallsBackToBaseURL(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest("POST", "https://auth.example.com/api/auth/signout?callbackUrl="+
		url.QueryEscape("https://evil.com/"), nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 302, rec.Code)
	require.Equal(t, "https://auth.example.com", rec.Header().Get("Location"))
}

func TestCredentialsSignInIssuesSession(t *testing.T) {
	var gotTenant string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = r.Header.Get("X-Tenant")
		w.Write([]byte(`{"name":"John","email":"john@acme.test","subdomain":"acme","role":"member"}`))
	}))
	defer backend.Close()
	t.Setenv("CREDENTIALS_BACKEND_URL", backend.URL)

	f := setupTestFixture(t)

	form := url.Values{
		"email":       {"john@acme.test"},
		"password":    {"secret"},
		"callbackUrl": {"https://acme.example.com/social-login"},
	}
	req := httptest.NewRequest("POST", "https://auth.example.com/api/auth/callback/credentials",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "https://acme.example.com/social-login", body["url"])

	issued := findCookie(rec.Result(), sessionCookieName)
	require.NotNil(t, issued)
	tok, err := f.tokens.VerifySession(issued.Value)
	require.NoError(t, err)
	require.Equal(t, "John", tok.Name)
	require.Equal(t, "acme", tok.Subdomain)
	require.Equal(t, "acme", gotTenant)
}

func TestCredentialsSignInRejectedByBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer backend.Close()
	t.Setenv("CREDENTIALS_BACKEND_URL", backend.URL)

	f := setupTestFixture(t)

	req := httptest.NewRequest("POST", "https://auth.example.com/api/auth/callback/credentials",
		strings.NewReader("email=mallory%40evil.test&password=guess"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 401, rec.Code)
	require.Nil(t, findCookie(rec.Result(), sessionCookieName))
}

func TestOAuthCallbackWithoutStateFails(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest("GET", "https://auth.example.com/api/auth/callback/google?code=abc", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 302, rec.Code)
	require.Equal(t, "https://auth.example.com/", rec.Header().Get("Location"))
	require.Nil(t, findCookie(rec.Result(), sessionCookieName))
}

func TestOAuthCallbackStateMismatchFails(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest("GET",
		"https://auth.example.com/api/auth/callback/google?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: "__Secure-authbroker.state", Value: "different"})
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 302, rec.Code)
	require.Equal(t, "https://auth.example.com/", rec.Header().Get("Location"))
	require.Nil(t, findCookie(rec.Result(), sessionCookieName))
}

func TestProviderErrorParamFailsClosed(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest("GET",
		"https://auth.example.com/api/auth/callback/google?error=access_denied", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, 302, rec.Code)
	require.Equal(t, "https://auth.example.com/", rec.Header().Get("Location"))
}
