package server

import (
	"fmt"
	"net/http"

	"github.com/urstruly/go-auth-broker/tenancy"
)

const contentTypeHTML = "text/html; charset=utf-8"

// signInPage is the auth host's own fallback page: shown when no validated
// return target exists. Tenants render their own UIs; this stays minimal.
const signInPage = `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
<h1>Sign in</h1>
<p><a href="` + RouteSignIn + `/google">Continue with Google</a></p>
<p><a href="` + RouteSignIn + `/apple">Continue with Apple</a></p>
</body>
</html>`

// IndexHandler renders the sign-in page on the auth host. On tenant hosts
// it serves a minimal landing placeholder; real tenant applications sit
// behind the broker and receive the X-Tenant header instead.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, tenant := tenancy.Classify(requestHost(r), s.baseDomain)

		w.Header().Set("Content-Type", contentTypeHTML)
		if kind == tenancy.KindAuth {
			fmt.Fprint(w, signInPage)
			return
		}
		fmt.Fprintf(w, "<!DOCTYPE html><html><body><h1>%s</h1></body></html>", tenantTitle(tenant))
	}
}

// SocialLoginHandler is each tenant's designated post-login path. The
// tenant router has already enforced a valid, tenant-matching session
// before this runs.
func (s *Server) SocialLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeHTML)
		fmt.Fprintf(w, "<!DOCTYPE html><html><body><h1>Signed in to %s</h1></body></html>",
			tenantTitle(r.Header.Get(HeaderTenant)))
	}
}

func tenantTitle(tenant string) string {
	if tenant == "" {
		return "Welcome"
	}
	return tenant
}
