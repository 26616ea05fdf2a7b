package server

import (
	"net/http"
	"net/http/httputil"

	"github.com/rs/zerolog"

	"github.com/urstruly/go-auth-broker/broker"
	"github.com/urstruly/go-auth-broker/claims"
	"github.com/urstruly/go-auth-broker/internal/config"
	brokererrors "github.com/urstruly/go-auth-broker/internal/errors"
	"github.com/urstruly/go-auth-broker/providers"
	"github.com/urstruly/go-auth-broker/redirect"
	"github.com/urstruly/go-auth-broker/tenancy"
	"github.com/urstruly/go-auth-broker/token"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "production")
	mux        *http.ServeMux
	routes     []string
	handler    http.HandlerFunc
	config     config.Config
	baseDomain string
	authHost   string

	tokens    *token.Manager
	validator *redirect.Validator
	registry  *providers.Registry
	broker    *broker.Broker
	authProxy *httputil.ReverseProxy

	log zerolog.Logger
}

func New(cfg config.Config, log zerolog.Logger) (*Server, error) {
	tokens, err := token.New(cfg.GetSessionSecret(), cfg.GetSessionMaxAge(), cfg.GetStateMaxAge())
	if err != nil {
		return nil, brokererrors.Wrapf(err, "[Server New] token manager")
	}

	validator := redirect.New(cfg.GetBaseDomain(), !cfg.IsProduction())
	backend := providers.NewBackendClient(cfg, log)

	s := &Server{
		env:        cfg.GetEnv(),
		mux:        http.NewServeMux(),
		config:     cfg,
		baseDomain: tenancy.Normalize(cfg.GetBaseDomain()),
		authHost:   tenancy.AuthHost(cfg.GetBaseDomain()),
		tokens:     tokens,
		validator:  validator,
		registry:   providers.NewRegistry(cfg, cfg.GetBaseURL()+RouteCallback),
		broker:     broker.New(cfg.GetBaseDomain(), cfg.GetBaseURL(), validator, backend, log),
		log:        log,
	}
	s.authProxy = s.newAuthProxy()

	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP,
		s.RecoverMiddleware,
		s.LoggingMiddleware,
		s.WWWRedirectMiddleware,
		s.FrameSecurityMiddleware,
		s.TenantMiddleware,
		s.AuthMiddleware,
	)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

// requestHost is the effective inbound host, honoring the forwarded-host
// header set by upstream proxies.
func requestHost(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		return tenancy.Normalize(fwd)
	}
	return tenancy.Normalize(r.Host)
}

// originHost is where the request first entered the system: the tenant
// origin marker written by the tenant router when proxying, else the
// request host itself.
func originHost(r *http.Request) string {
	if origin := r.Header.Get(HeaderTenantOrigin); origin != "" {
		return tenancy.Normalize(origin)
	}
	return requestHost(r)
}

func getScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// sessionFromRequest reads and verifies the session cookie. ErrNoSession
// when the cookie is absent.
func (s *Server) sessionFromRequest(r *http.Request) (claims.SessionToken, error) {
	cookie, err := r.Cookie(s.sessionCookieName())
	if err != nil || cookie.Value == "" {
		return claims.SessionToken{}, brokererrors.ErrNoSession
	}
	return s.tokens.VerifySession(cookie.Value)
}
