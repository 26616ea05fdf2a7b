package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	brokererrors "github.com/urstruly/go-auth-broker/internal/errors"
)

// State is the value carried through the OAuth round trip. Signing it lets
// the callback trust the tenant it names, which is why tenant-from-state
// outranks tenant-from-callback-URL.
type State struct {
	Nonce  string `json:"nonce"`
	Tenant string `json:"tenant,omitempty"`
	Return string `json:"return,omitempty"`
}

type stateClaims struct {
	State
	jwtlib.RegisteredClaims
}

// NewState creates a state with a fresh nonce.
func NewState(tenant, returnURL string) State {
	return State{
		Nonce:  uuid.New().String(),
		Tenant: tenant,
		Return: returnURL,
	}
}

// SignState produces the signed compact form handed to the provider.
func (m *Manager) SignState(st State) (string, error) {
	now := NowTimeFunc()
	c := stateClaims{
		State: st,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.stateTTL)),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", brokererrors.Wrapf(err, "[token SignState] sign")
	}
	return signed, nil
}

// VerifyState parses and verifies a state value returned by the provider.
func (m *Manager) VerifyState(raw string) (State, error) {
	var c stateClaims
	parsed, err := jwtlib.ParseWithClaims(raw, &c, m.keyFunc,
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }),
	)
	if err != nil || !parsed.Valid {
		return State{}, brokererrors.ErrInvalidState
	}
	if c.Nonce == "" {
		return State{}, brokererrors.ErrInvalidState
	}
	return c.State, nil
}
