package config

type ProviderConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetAppleClientID() string
	GetAppleClientSecret() string
}

type Providers struct{}

var _ ProviderConfig = Providers{}

func (Providers) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (Providers) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

// GetAppleClientID returns the Apple Services ID.
func (Providers) GetAppleClientID() string {
	return GetEnv("APPLE_ID", "")
}

// GetAppleClientSecret returns the prebuilt signed JWT used as the Apple
// client secret.
func (Providers) GetAppleClientSecret() string {
	return GetEnv("APPLE_CLIENT_SECRET", "")
}
