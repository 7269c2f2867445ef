package authz

import (
	"net/http"

	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// Middleware gates HTTP routes on resolved permissions.
type Middleware struct {
	Service *Service
}

// RequireAny ensures the current principal holds at least one of the
// permissions. Everything that is not a definite grant, including resolver
// store failures, answers 403: the check fails closed rather than failing
// the page.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if m.Service != nil && m.Service.HasAnyPermission(r.Context(), actor.ID, perms...) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireAuthenticated only asserts a logged-in principal, without any
// permission check. Used by pages every role may see.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.ActorFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
