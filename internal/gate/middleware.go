package gate

import (
	"log/slog"
	"net/http"

	"github.com/meridianpay/console/internal/shared"
)

// Middleware wires permission guards for HTTP handlers. Forbidden, when
// set, renders the denial response; otherwise a plain 403 is written.
type Middleware struct {
	Logger    *slog.Logger
	Forbidden http.Handler
}

// Require ensures the current user holds the given permission.
func (m Middleware) Require(perm string) func(http.Handler) http.Handler {
	return m.guard(Requirement{Permission: perm})
}

// RequireAny ensures the current user has at least one of the permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.guard(Requirement{AnyOf: Normalize(perms)})
}

// RequireAll ensures the current user has all of the permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.guard(Requirement{AllOf: Normalize(perms)})
}

// RequireSuper restricts the route to super admins.
func (m Middleware) RequireSuper() func(http.Handler) http.Handler {
	return m.guard(Requirement{SuperOnly: true})
}

func (m Middleware) guard(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := shared.CurrentUser(r.Context())
			if Allowed(user, req) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil && user != nil {
				m.Logger.Warn("permission denied",
					slog.String("path", r.URL.Path),
					slog.String("user", user.ID))
			}
			if m.Forbidden != nil {
				m.Forbidden.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
