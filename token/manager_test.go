package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/urstruly/go-auth-broker/claims"
	brokererrors "github.com/urstruly/go-auth-broker/internal/errors"
	"github.com/urstruly/go-auth-broker/token"
)

const secretStr = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T) *token.Manager {
	t.Helper()
	m, err := token.New(secretStr, 30*time.Minute, 15*time.Minute)
	require.NoError(t, err)
	return m
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := token.New("", time.Minute, time.Minute)
	require.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	m := newManager(t)

	in := claims.SessionToken{
		Name:      "John",
		Email:     "john@acme.test",
		Subdomain: "acme",
		Provider:  "google",
	}
	signed, err := m.SignSession(in)
	require.NoError(t, err)

	out, err := m.VerifySession(signed)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestVerifySessionRejectsTampering(t *testing.T) {
	m := newManager(t)

	signed, err := m.SignSession(claims.SessionToken{Subdomain: "acme"})
	require.NoError(t, err)

	_, err = m.VerifySession(signed[:len(signed)-2] + "xx")
	require.ErrorIs(t, err, brokererrors.ErrInvalidToken)
}

func TestVerifySessionRejectsForeignKey(t *testing.T) {
	m := newManager(t)
	other, err := token.New("another-secret-another-secret-12", 30*time.Minute, 15*time.Minute)
	require.NoError(t, err)

	signed, err := other.SignSession(claims.SessionToken{Subdomain: "acme"})
	require.NoError(t, err)

	_, err = m.VerifySession(signed)
	require.ErrorIs(t, err, brokererrors.ErrInvalidToken)
}

func TestVerifySessionExpiry(t *testing.T) {
	m := newManager(t)

	signed, err := m.SignSession(claims.SessionToken{Subdomain: "acme"})
	require.NoError(t, err)

	token.NowTimeFunc = func() time.Time { return time.Now().Add(31 * time.Minute) }
	defer func() { token.NowTimeFunc = time.Now }()

	_, err = m.VerifySession(signed)
	require.ErrorIs(t, err, brokererrors.ErrTokenExpired)
}

func TestStateRoundTrip(t *testing.T) {
	m := newManager(t)

	st := token.NewState("acme", "https://acme.example.com/social-login")
	require.NotEmpty(t, st.Nonce)

	signed, err := m.SignState(st)
	require.NoError(t, err)

	out, err := m.VerifyState(signed)
	require.NoError(t, err)
	require.Equal(t, st, out)
}

func TestVerifyStateRejectsGarbage(t *testing.T) {
	m := newManager(t)

	_, err := m.VerifyState("not-a-token")
	require.ErrorIs(t, err, brokererrors.ErrInvalidState)
}

func TestVerifyStateExpiry(t *testing.T) {
	m := newManager(t)

	signed, err := m.SignState(token.NewState("acme", ""))
	require.NoError(t, err)

	token.NowTimeFunc = func() time.Time { return time.Now().Add(16 * time.Minute) }
	defer func() { token.NowTimeFunc = time.Now }()

	_, err = m.VerifyState(signed)
	require.ErrorIs(t, err, brokererrors.ErrInvalidState)
}
