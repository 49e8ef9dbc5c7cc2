package policy

import (
	"net/http"

	"github.com/transitrack/transitrack/auth"
	"github.com/transitrack/transitrack/gate"
)

// RouteGate decides which page tree a request may reach based on the
// session-derived role. Exactly one tree is reachable per role; anything
// outside it redirects to the public landing, which in turn forwards
// authenticated visitors to their role's home.
type RouteGate struct {
	gate *gate.Gate[uint]
}

// NewRouteGate wraps an authorization gate for routing decisions.
func NewRouteGate(g *gate.Gate[uint]) *RouteGate {
	return &RouteGate{gate: g}
}

// HomePath is the landing destination for a role.
func HomePath(role gate.Role) string {
	switch role {
	case gate.RoleAdmin:
		return "/admin"
	case gate.RoleUser:
		return "/dashboard"
	default:
		return "/"
	}
}

// Role resolves the current request's role. No session, an unresolvable
// user, or a store failure all yield RoleNone.
func (rg *RouteGate) Role(r *http.Request) gate.Role {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return gate.RoleNone
	}
	return rg.gate.RoleOf(r.Context(), uid)
}

// RequireAuthenticated admits user and admin roles; everything else is sent
// to the public landing.
func (rg *RouteGate) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rg.Role(r).Authenticated() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser admits only the regular-user tree.
func (rg *RouteGate) RequireUser(next http.Handler) http.Handler {
	return rg.require(gate.RoleUser, next)
}

// RequireAdmin admits only the administrator tree. A regular user hitting an
// admin path falls through to the unmatched-path rule: redirect to /.
func (rg *RouteGate) RequireAdmin(next http.Handler) http.Handler {
	return rg.require(gate.RoleAdmin, next)
}

func (rg *RouteGate) require(role gate.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rg.Role(r) != role {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PublicOnly redirects authenticated visitors to their role's home; the
// landing and auth pages are only for signed-out visitors.
func (rg *RouteGate) PublicOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role := rg.Role(r); role.Authenticated() {
			http.Redirect(w, r, HomePath(role), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
