// Package middleware provides the HTTP middleware chain for SupplyDesk.
package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/response"
)

// Authenticate requires a valid "Authorization: Bearer <jwt>" header and
// stores the token's identity in the request context.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			response.Unauthorized(w, "Unauthorized")
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			logger.WithCtx(r.Context()).Debug("token rejected", "error", err)
			response.Unauthorized(w, "Invalid token")
			return
		}

		id := claims.Identity()
		log := logger.WithCtx(r.Context()).With("subject", id.Subject, "role", id.Role)
		ctx := logger.InjectLogger(auth.WithIdentity(r.Context(), id), log)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
