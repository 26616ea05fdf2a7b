package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.IndexHandler())
	s.RegisterRouteFunc("GET "+RouteSocialLogin, s.SocialLoginHandler())

	// Federated sign-in
	s.RegisterRouteFunc("GET "+RouteSignIn+"/{provider}", s.SignInHandler())
	s.RegisterRouteFunc("GET "+RouteCallback+"/{provider}", s.OAuthCallbackHandler())
	s.RegisterRouteFunc("POST "+RouteCallback+"/{provider}", s.OAuthCallbackHandler()) // form_post response mode

	// Credentials sign-in overrides the generic callback pattern
	s.RegisterRouteFunc("POST "+RouteCredentials, s.CredentialsSignInHandler())

	// Session lifecycle
	s.RegisterRouteFunc("GET "+RouteSession, s.SessionHandler())
	s.RegisterRouteFunc("POST "+RouteSession, s.SessionUpdateHandler())
	s.RegisterRouteFunc("GET "+RouteSignOut, s.SignOutHandler())
	s.RegisterRouteFunc("POST "+RouteSignOut, s.SignOutHandler())
}

func (s *Server) RegisterRouteFunc(pattern string, h http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, h)
}

func (s *Server) logRoutes() {
	for _, route := range s.routes {
		s.log.Debug().Str("route", route).Msg("registered")
	}
}
