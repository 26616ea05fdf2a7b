package providers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	brokererrors "github.com/urstruly/go-auth-broker/internal/errors"
	"github.com/urstruly/go-auth-broker/providers"
)

type backendConfig struct {
	url string
}

func (c backendConfig) GetCredentialsBackendURL() string { return c.url }
func (c backendConfig) GetCredentialsBackendTimeout() time.Duration {
	return 2 * time.Second
}

func newClient(url string) *providers.BackendClient {
	return providers.NewBackendClient(backendConfig{url: url}, zerolog.Nop())
}

func TestAuthenticateSuccess(t *testing.T) {
	var gotAuth, gotTenant string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTenant = r.Header.Get("X-Tenant")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"John","email":"john@acme.test","subdomain":"acme","role":"member"}`))
	}))
	defer backend.Close()

	creds := providers.Credentials{
		Email:    "john@acme.test",
		Password: "secret",
		Token:    "bearer-token",
	}
	user, err := newClient(backend.URL).Authenticate(context.Background(), creds, "acme")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, "John", *user.Name)
	require.Equal(t, "acme", *user.Subdomain)
	require.Equal(t, "Bearer bearer-token", gotAuth)
	require.Equal(t, "acme", gotTenant)
}

func TestAuthenticateBearerFromUserData(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"subdomain":"acme"}`))
	}))
	defer backend.Close()

	creds := providers.Credentials{
		UserData: `{"access_token":"from-user-data"}`,
		Token:    "fallback",
	}
	_, err := newClient(backend.URL).Authenticate(context.Background(), creds, "")
	require.NoError(t, err)
	require.Equal(t, "Bearer from-user-data", gotAuth)
}

func TestAuthenticateRejectedStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer backend.Close()

	user, err := newClient(backend.URL).Authenticate(context.Background(), providers.Credentials{}, "")
	require.ErrorIs(t, err, brokererrors.ErrNoUser)
	require.Nil(t, user)
}

func TestAuthenticateEmptyUser(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	_, err := newClient(backend.URL).Authenticate(context.Background(), providers.Credentials{}, "")
	require.ErrorIs(t, err, brokererrors.ErrNoUser)
}

func TestAuthenticateMissingMembership(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"John","email":"john@acme.test"}`))
	}))
	defer backend.Close()

	_, err := newClient(backend.URL).Authenticate(context.Background(), providers.Credentials{}, "")
	require.ErrorIs(t, err, brokererrors.ErrNoUser)
}

func TestAuthenticateUnconfigured(t *testing.T) {
	_, err := newClient("").Authenticate(context.Background(), providers.Credentials{}, "")
	require.ErrorIs(t, err, brokererrors.ErrIdentityExchange)
}

func TestAuthenticateBackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // immediately unreachable

	_, err := newClient(backend.URL).Authenticate(context.Background(), providers.Credentials{}, "")
	require.ErrorIs(t, err, brokererrors.ErrIdentityExchange)
}
