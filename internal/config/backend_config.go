package config

import "time"

type BackendConfig interface {
	GetCredentialsBackendURL() string
	GetCredentialsBackendTimeout() time.Duration
}

type Backend struct{}

var _ BackendConfig = Backend{}

// GetCredentialsBackendURL is the fixed endpoint of the external user-lookup
// service. The client-supplied "url" credential field is deliberately ignored.
func (Backend) GetCredentialsBackendURL() string {
	return GetEnv("CREDENTIALS_BACKEND_URL", "")
}

func (Backend) GetCredentialsBackendTimeout() time.Duration {
	return 10 * time.Second
}
