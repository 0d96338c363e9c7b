// Package rbac gates routes on the caller's role.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/response"
)

// HasRole allows only callers whose identity carries one of roles.
// middleware.Authenticate must run first.
func HasRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}
			if !allowed[id.Role] {
				response.Forbidden(w, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Admin is HasRole(auth.RoleAdmin).
func Admin(next http.Handler) http.Handler {
	return HasRole(auth.RoleAdmin)(next)
}
