package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/urstruly/go-auth-broker/claims"
	"github.com/urstruly/go-auth-broker/internal/config"
	brokererrors "github.com/urstruly/go-auth-broker/internal/errors"
)

// Credentials is the form a client submits for a credentials sign-in. The
// original client also sends a "url" field naming the backend to call; that
// field is ignored, the backend endpoint is fixed by configuration.
type Credentials struct {
	BrandID    string `json:"brandId"`
	UserData   string `json:"userData"` // raw JSON blob, only access_token is read from it
	Email      string `json:"email"`
	Password   string `json:"password"`
	Token      string `json:"token"`
	Credential string `json:"credential"`
}

// BearerToken extracts the bearer for the backend call: the access_token
// inside the userData blob when present, else the token field.
func (c Credentials) BearerToken() string {
	if c.UserData != "" {
		var data struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal([]byte(c.UserData), &data); err == nil && data.AccessToken != "" {
			return data.AccessToken
		}
	}
	return c.Token
}

// BackendClient authenticates credentials against the external user-lookup
// service. Anything other than a 2xx with a usable user object is an
// authentication failure, never an error that propagates to the browser.
type BackendClient struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

func NewBackendClient(cfg config.BackendConfig, log zerolog.Logger) *BackendClient {
	return &BackendClient{
		url:    cfg.GetCredentialsBackendURL(),
		client: &http.Client{Timeout: cfg.GetCredentialsBackendTimeout()},
		log:    log,
	}
}

// Authenticate resolves a user for the supplied credentials. The returned
// identity is nil when authentication fails. The request is bounded by both
// the client timeout and the surrounding request's context, so a hanging
// backend fails this request only.
func (b *BackendClient) Authenticate(ctx context.Context, creds Credentials, tenant string) (*claims.Update, error) {
	if b.url == "" {
		return nil, brokererrors.Wrapf(brokererrors.ErrIdentityExchange, "credentials backend not configured")
	}

	body, err := json.Marshal(map[string]string{
		"email":      creds.Email,
		"password":   creds.Password,
		"credential": creds.Credential,
		"brandId":    creds.BrandID,
	})
	if err != nil {
		return nil, brokererrors.Wrapf(err, "[BackendClient Authenticate] marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, brokererrors.Wrapf(err, "[BackendClient Authenticate] request")
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer := creds.BearerToken(); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if tenant != "" {
		req.Header.Set("X-Tenant", tenant)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		b.log.Warn().Err(err).Msg("credentials backend unreachable")
		return nil, brokererrors.Wrapf(brokererrors.ErrIdentityExchange, "backend call: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b.log.Info().Int("status", resp.StatusCode).Msg("credentials rejected by backend")
		return nil, brokererrors.ErrNoUser
	}

	var user claims.Update
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, brokererrors.Wrapf(brokererrors.ErrIdentityExchange, "decode user: %v", err)
	}
	if user.IsEmpty() {
		return nil, brokererrors.ErrNoUser
	}
	if !user.HasTenantMembership() {
		b.log.Info().Msg("backend user carries no tenant membership")
		return nil, brokererrors.ErrNoUser
	}
	return &user, nil
}
