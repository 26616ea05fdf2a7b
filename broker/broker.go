// Package broker implements the callback pipeline for one login attempt:
// sign-in decision, token build, session materialization and the redirect
// decision. Every method is a catch boundary: a failure inside any step
// degrades to the last known-safe state instead of propagating.
package broker

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/urstruly/go-auth-broker/claims"
	brokererrors "github.com/urstruly/go-auth-broker/internal/errors"
	"github.com/urstruly/go-auth-broker/providers"
	"github.com/urstruly/go-auth-broker/redirect"
	"github.com/urstruly/go-auth-broker/tenancy"
	"github.com/urstruly/go-auth-broker/token"
)

type Broker struct {
	baseDomain string
	baseURL    string // safe fallback destination, the auth host's own page
	validator  *redirect.Validator
	backend    *providers.BackendClient
	log        zerolog.Logger
}

func New(baseDomain, baseURL string, validator *redirect.Validator, backend *providers.BackendClient, log zerolog.Logger) *Broker {
	return &Broker{
		baseDomain: baseDomain,
		baseURL:    baseURL,
		validator:  validator,
		backend:    backend,
		log:        log,
	}
}

// SignInOAuth decides acceptance of a verified identity-provider result.
// The provider exchange already verified the ID token, so a non-empty
// identity is accepted unconditionally.
func (b *Broker) SignInOAuth(identity claims.Update) bool {
	return !identity.IsEmpty()
}

// SignInCredentials decides acceptance of a credentials sign-in by resolving
// the user against the backend. A nil user is never accepted.
func (b *Broker) SignInCredentials(ctx context.Context, creds providers.Credentials, tenant string) (*claims.Update, bool) {
	user, err := b.backend.Authenticate(ctx, creds, tenant)
	if err != nil {
		if !brokererrors.Is(err, brokererrors.ErrNoUser) {
			b.log.Error().Err(err).Msg("credentials sign-in failed")
		}
		return nil, false
	}
	if user == nil {
		return nil, false
	}
	return user, true
}

// DeriveTenant resolves the tenant for a login attempt: the signed state
// outranks the callback URL's host, and nothing else is consulted.
func (b *Broker) DeriveTenant(st *token.State, callbackURL string) string {
	if st != nil && st.Tenant != "" {
		return st.Tenant
	}
	if callbackURL != "" {
		if u, err := url.Parse(callbackURL); err == nil {
			return tenancy.Subdomain(u.Hostname(), b.baseDomain)
		}
	}
	return ""
}

// BuildToken merges an identity result into the session claims. On any
// internal failure the existing token is returned unchanged.
func (b *Broker) BuildToken(existing claims.SessionToken, identity claims.Update, st *token.State, callbackURL string) (out claims.SessionToken) {
	out = existing
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("token build failed, keeping prior claims")
			out = existing
		}
	}()
	out = claims.FromIdentity(existing, identity, b.DeriveTenant(st, callbackURL))
	return out
}

// ApplyUpdate runs the authenticated update trigger. Only allow-listed
// fields are copied; an unusable payload leaves the token unchanged.
func (b *Broker) ApplyUpdate(tok claims.SessionToken, upd claims.Update) (out claims.SessionToken) {
	out = tok
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("claims update failed, keeping prior claims")
			out = tok
		}
	}()
	merged := tok
	merged.Apply(upd)
	return merged
}

// Session materializes the client-visible projection of a token.
func (b *Broker) Session(tok claims.SessionToken) (out claims.ClientSession) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("session materialization failed")
			out = claims.ClientSession{}
		}
	}()
	return tok.IntoSession()
}

// RedirectTarget validates the engine's requested destination against the
// requesting origin. A rejected target is replaced by the configured base
// URL; this method never fails.
func (b *Broker) RedirectTarget(requested string, origin *url.URL) string {
	if target, ok := b.validator.Resolve(requested, origin); ok {
		return target
	}
	if requested != "" {
		b.log.Warn().Str("target", requested).Msg("rejected redirect target")
	}
	return b.baseURL
}

// TenantLanding is the post-login landing URL for a tenant, used when the
// sign-in decision short-circuits straight back to the originating tenant.
// It passes through the validator like every other destination.
func (b *Broker) TenantLanding(tenant string) string {
	if tenant == "" {
		return b.baseURL
	}
	target := fmt.Sprintf("https://%s.%s%s", tenant, b.baseDomain, SocialLoginPath)
	if !b.validator.IsAllowedTenant(target) {
		return b.baseURL
	}
	return target
}

// SocialLoginPath is each tenant's designated post-login path.
const SocialLoginPath = "/social-login"
