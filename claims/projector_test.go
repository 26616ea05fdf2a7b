package claims_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urstruly/go-auth-broker/claims"
	"github.com/urstruly/go-auth-broker/internal/utils"
)

func TestApplyCopiesOnlyPresentFields(t *testing.T) {
	tok := claims.SessionToken{Name: "John", Role: "member", Subdomain: "acme"}

	tok.Apply(claims.Update{
		Name:  utils.Ptr("Johnny"),
		Theme: utils.Ptr("dark"),
	})

	require.Equal(t, "Johnny", tok.Name)
	require.Equal(t, "dark", tok.Theme)
	require.Equal(t, "member", tok.Role)    // untouched
	require.Equal(t, "acme", tok.Subdomain) // untouched
}

func TestApplyIsIdempotent(t *testing.T) {
	upd := claims.Update{
		Name:      utils.Ptr("John"),
		Email:     utils.Ptr("john@acme.test"),
		Role:      utils.Ptr("admin"),
		Subdomain: utils.Ptr("acme"),
	}

	once := claims.SessionToken{}
	once.Apply(upd)

	twice := claims.SessionToken{}
	twice.Apply(upd)
	twice.Apply(upd)

	require.Equal(t, once, twice)
}

func TestAttackerKeysAreDropped(t *testing.T) {
	// Extra keys in an untrusted payload must not survive the merge.
	payload := []byte(`{
		"name": "Mallory",
		"role": "member",
		"isSuperAdmin": true,
		"exp": 0,
		"signingKey": "leak"
	}`)

	var upd claims.Update
	require.NoError(t, json.Unmarshal(payload, &upd))

	tok := claims.SessionToken{}
	tok.Apply(upd)

	out, err := json.Marshal(tok)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	require.NotContains(t, fields, "isSuperAdmin")
	require.NotContains(t, fields, "signingKey")
	require.Equal(t, "Mallory", fields["name"])
}

func TestFromIdentityPinsDerivedTenant(t *testing.T) {
	identity := claims.Update{
		Name:      utils.Ptr("John"),
		Subdomain: utils.Ptr("beta"), // client-influenced, must lose
	}

	tok := claims.FromIdentity(claims.SessionToken{}, identity, "acme")
	require.Equal(t, "acme", tok.Subdomain)
	require.Equal(t, "John", tok.Name)
}

func TestFromIdentityKeepsBackendMembershipWithoutDerivation(t *testing.T) {
	identity := claims.Update{Subdomain: utils.Ptr("acme")}
	tok := claims.FromIdentity(claims.SessionToken{}, identity, "")
	require.Equal(t, "acme", tok.Subdomain)
}

func TestIntoSessionRoundTrip(t *testing.T) {
	identity := claims.Update{
		Name:         utils.Ptr("John"),
		Email:        utils.Ptr("john@acme.test"),
		Role:         utils.Ptr("admin"),
		Provider:     utils.Ptr("google"),
		IDToken:      utils.Ptr("id-token"),
		RefreshToken: utils.Ptr("refresh-token"),
	}

	session := claims.FromIdentity(claims.SessionToken{}, identity, "acme").IntoSession()

	require.Equal(t, "John", session.Name)
	require.Equal(t, "acme", session.Subdomain)
	require.Equal(t, "id-token", session.IDToken)

	// The refresh token never appears in the client-visible projection.
	out, err := json.Marshal(session)
	require.NoError(t, err)
	require.NotContains(t, string(out), "refresh-token")
}

func TestHasTenantMembership(t *testing.T) {
	require.False(t, claims.Update{}.HasTenantMembership())
	require.False(t, claims.Update{Subdomain: utils.Ptr("")}.HasTenantMembership())
	require.True(t, claims.Update{Subdomain: utils.Ptr("acme")}.HasTenantMembership())
	require.True(t, claims.Update{BrandID: utils.Ptr("brand-1")}.HasTenantMembership())
}
