// Package providers holds the outbound identity integrations: the federated
// OIDC providers reached over the authorization-code + PKCE flow, and the
// credentials backend reached over plain HTTP.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"

	"github.com/urstruly/go-auth-broker/claims"
	"github.com/urstruly/go-auth-broker/internal/config"
	brokererrors "github.com/urstruly/go-auth-broker/internal/errors"
	"github.com/urstruly/go-auth-broker/internal/utils"
)

// Provider names as they appear in routes and in the session's provider
// claim.
const (
	Google = "google"
	Apple  = "apple"
)

const (
	googleIssuer = "https://accounts.google.com"
	appleIssuer  = "https://appleid.apple.com"
)

// Conn bundles everything needed to talk to one provider.
type Conn struct {
	Name     string
	Provider *oidc.Provider
	OAuth2   *oauth2.Config
	Verifier *oidc.IDTokenVerifier

	// extra authorization parameters, e.g. Apple's form_post response mode
	authParams []oauth2.AuthCodeOption
}

// Registry resolves provider connections, caching OIDC discovery results so
// repeated sign-ins do not re-fetch the discovery document.
type Registry struct {
	cfg         config.Config
	redirectURL string
	discovered  *gocache.Cache
}

func NewRegistry(cfg config.Config, redirectURL string) *Registry {
	return &Registry{
		cfg:         cfg,
		redirectURL: redirectURL,
		discovered:  gocache.New(1*time.Hour, 10*time.Minute),
	}
}

// Conn returns the connection for a named provider, performing OIDC
// discovery on first use.
func (r *Registry) Conn(ctx context.Context, name string) (*Conn, error) {
	if cached, ok := r.discovered.Get(name); ok {
		return cached.(*Conn), nil
	}

	issuer, clientID, clientSecret, scopes, authParams, err := r.settings(name)
	if err != nil {
		return nil, err
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, brokererrors.Wrapf(err, "[providers Conn] discovery for %q", name)
	}

	conn := &Conn{
		Name:     name,
		Provider: provider,
		OAuth2: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  fmt.Sprintf("%s/%s", r.redirectURL, name),
			Scopes:       scopes,
		},
		Verifier:   provider.Verifier(&oidc.Config{ClientID: clientID}),
		authParams: authParams,
	}
	r.discovered.SetDefault(name, conn)
	return conn, nil
}

func (r *Registry) settings(name string) (issuer, clientID, clientSecret string, scopes []string, authParams []oauth2.AuthCodeOption, err error) {
	switch name {
	case Google:
		return googleIssuer,
			r.cfg.GetGoogleClientID(),
			r.cfg.GetGoogleClientSecret(),
			[]string{oidc.ScopeOpenID, "profile", "email"},
			nil,
			nil
	case Apple:
		// Apple posts the callback cross-site, hence form_post.
		return appleIssuer,
			r.cfg.GetAppleClientID(),
			r.cfg.GetAppleClientSecret(),
			[]string{"name", "email"},
			[]oauth2.AuthCodeOption{oauth2.SetAuthURLParam("response_mode", "form_post")},
			nil
	default:
		return "", "", "", nil, nil, brokererrors.Wrapf(brokererrors.ErrUnknownProvider, "%q", name)
	}
}

// AuthCodeURL builds the provider authorization URL for one sign-in attempt.
func (c *Conn) AuthCodeURL(state, nonce, codeChallenge string) string {
	opts := []oauth2.AuthCodeOption{
		oidc.Nonce(nonce),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	}
	opts = append(opts, c.authParams...)
	return c.OAuth2.AuthCodeURL(state, opts...)
}

// Exchange swaps an authorization code for a verified identity. The ID token
// signature, audience and nonce are all checked before any claim is trusted.
func (c *Conn) Exchange(ctx context.Context, code, codeVerifier, nonce string) (claims.Update, error) {
	oauth2Token, err := c.OAuth2.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return claims.Update{}, brokererrors.Wrapf(brokererrors.ErrIdentityExchange, "token exchange: %v", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return claims.Update{}, brokererrors.Wrapf(brokererrors.ErrIdentityExchange, "no id_token in response")
	}

	idToken, err := c.Verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return claims.Update{}, brokererrors.Wrapf(brokererrors.ErrIdentityExchange, "id_token verification: %v", err)
	}

	var idClaims struct {
		Nonce string `json:"nonce"`
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&idClaims); err != nil {
		return claims.Update{}, brokererrors.Wrapf(brokererrors.ErrIdentityExchange, "claims extraction: %v", err)
	}
	if idClaims.Nonce != nonce {
		return claims.Update{}, brokererrors.ErrNonceMismatch
	}

	identity := claims.Update{
		UserID:   utils.Ptr(idClaims.Sub),
		Email:    utils.Ptr(idClaims.Email),
		Name:     utils.Ptr(idClaims.Name),
		Provider: utils.Ptr(c.Name),
		IDToken:  utils.Ptr(rawIDToken),
	}
	if oauth2Token.RefreshToken != "" {
		identity.RefreshToken = utils.Ptr(oauth2Token.RefreshToken)
	}
	return identity, nil
}
