package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	portEnvVar       = "PORT"
	appNameVar       = "APP_NAME"
	envVar           = "ENV"
	baseDomainEnvVar = "BASE_DOMAIN"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetBaseDomain() string
	GetAuthHost() string
	GetBaseURL() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port == "" {
		port = "8080"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Auth Broker")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

func (e EnvVars) IsProduction() bool {
	return strings.EqualFold(e.GetEnv(), "production") || strings.EqualFold(e.GetEnv(), "prod")
}

func (EnvVars) GetBaseDomain() string {
	return GetEnv(baseDomainEnvVar, "urstruly.xyz")
}

func (e EnvVars) GetAuthHost() string {
	return "auth." + e.GetBaseDomain()
}

// GetBaseURL is the canonical URL of the auth host, used as the safe
// fallback whenever a redirect target fails validation.
func (e EnvVars) GetBaseURL() string {
	return "https://" + e.GetAuthHost()
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
