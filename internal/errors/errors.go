package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth broker
var (
	// Host / tenant resolution errors
	ErrMalformedHost = errors.New("malformed host")
	ErrUnknownTenant = errors.New("unknown tenant")

	// Redirect errors
	ErrUntrustedRedirect = errors.New("untrusted redirect target")

	// Identity exchange errors
	ErrIdentityExchange = errors.New("identity exchange failed")
	ErrNoUser           = errors.New("no user resolved")
	ErrUnknownProvider  = errors.New("unknown identity provider")

	// Session token errors
	ErrInvalidToken  = errors.New("invalid session token")
	ErrTokenExpired  = errors.New("session token expired")
	ErrNoSession     = errors.New("no session")
	ErrInvalidState  = errors.New("invalid state")
	ErrNonceMismatch = errors.New("nonce mismatch")

	// Claims errors
	ErrClaimsMerge = errors.New("claims merge failed")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
