// Package token signs and verifies the compact session token and the OAuth
// state value. The broker treats the signing primitive as sound; this
// package only decides what goes into a token and when one is still valid.
package token

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/urstruly/go-auth-broker/claims"
	brokererrors "github.com/urstruly/go-auth-broker/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager signs and verifies session tokens with a shared HMAC secret.
type Manager struct {
	secret     []byte
	sessionTTL time.Duration
	stateTTL   time.Duration
}

// sessionClaims is the wire form of a session token.
type sessionClaims struct {
	claims.SessionToken
	jwtlib.RegisteredClaims
}

func New(secret string, sessionTTL, stateTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("[token New] signing secret is required")
	}
	return &Manager{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		stateTTL:   stateTTL,
	}, nil
}

// SignSession wraps the claim set in a signed compact token. Every call
// issues a fresh expiry, which is how session reads roll the session
// forward.
func (m *Manager) SignSession(tok claims.SessionToken) (string, error) {
	now := NowTimeFunc()
	c := sessionClaims{
		SessionToken: tok,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.sessionTTL)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", brokererrors.Wrapf(err, "[token SignSession] sign")
	}
	return signed, nil
}

// VerifySession parses and verifies a compact session token, returning its
// claim set.
func (m *Manager) VerifySession(raw string) (claims.SessionToken, error) {
	var c sessionClaims
	parsed, err := jwtlib.ParseWithClaims(raw, &c, m.keyFunc,
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }),
	)
	if err != nil {
		if brokererrors.Is(err, jwtlib.ErrTokenExpired) {
			return claims.SessionToken{}, brokererrors.ErrTokenExpired
		}
		return claims.SessionToken{}, brokererrors.Wrapf(brokererrors.ErrInvalidToken, "%v", err)
	}
	if !parsed.Valid {
		return claims.SessionToken{}, brokererrors.ErrInvalidToken
	}
	return c.SessionToken, nil
}

func (m *Manager) keyFunc(t *jwtlib.Token) (interface{}, error) {
	return m.secret, nil
}
