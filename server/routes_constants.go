package server

import "strings"

// Route path constants
// All broker routes are defined here to ensure consistency and prevent typos
const (
	// Authentication-protocol routes. Everything under this prefix is
	// proxied from tenant hosts to the central auth host.
	RouteAuthPrefix = "/api/auth/"

	RouteSignIn      = "/api/auth/signin"   // + /{provider}
	RouteCallback    = "/api/auth/callback" // + /{provider}
	RouteCredentials = "/api/auth/callback/credentials"
	RouteSession     = "/api/auth/session"
	RouteSignOut     = "/api/auth/signout"

	// Tenant routes
	RouteSocialLogin = "/social-login"
)

// Request headers written by the routing layer
const (
	HeaderTenant       = "X-Tenant"
	HeaderTenantOrigin = "X-Tenant-Origin"
)

// protectedPaths are tenant paths that require a valid session.
var protectedPaths = []string{
	RouteSocialLogin,
}

func isAuthPath(path string) bool {
	return path == strings.TrimSuffix(RouteAuthPrefix, "/") || strings.HasPrefix(path, RouteAuthPrefix)
}

func isProtectedPath(path string) bool {
	for _, p := range protectedPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
