package config

import "time"

type SecurityConfig interface {
	GetSessionSecret() string
	GetSessionMaxAge() time.Duration
	GetStateMaxAge() time.Duration
	GetReturnCookieMaxAge() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetSessionSecret() string {
	return GetEnv("AUTH_SESSION_SECRET", "")
}

func (Security) GetSessionMaxAge() time.Duration {
	return 30 * 24 * time.Hour // 30 days, refreshed on every session read
}

// GetStateMaxAge bounds one OAuth round trip.
func (Security) GetStateMaxAge() time.Duration {
	return 15 * time.Minute
}

// GetReturnCookieMaxAge bounds the tenant-return fallback cookie.
func (Security) GetReturnCookieMaxAge() time.Duration {
	return 15 * time.Minute
}
