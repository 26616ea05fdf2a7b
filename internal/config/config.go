package config

type Config interface {
	EnvConfig
	ProviderConfig
	SecurityConfig
	BackendConfig
}

type mainConfig struct {
	EnvVars
	Providers
	Security
	Backend
}

func New() Config {
	return mainConfig{}
}
