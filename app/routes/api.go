// Package routes registers the SupplyDesk HTTP API.
package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shashiranjanraj/supplydesk/app/controllers"
	"github.com/shashiranjanraj/supplydesk/config"
	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/ctx"
	"github.com/shashiranjanraj/supplydesk/pkg/middleware"
	"github.com/shashiranjanraj/supplydesk/pkg/rbac"
	"github.com/shashiranjanraj/supplydesk/pkg/response"
	"github.com/shashiranjanraj/supplydesk/pkg/router"
)

// Controllers are the handlers RegisterAPI mounts. A zero value is enough
// for route:list, which never serves a request.
type Controllers struct {
	Auth     *controllers.AuthController
	Catalog  *controllers.CatalogController
	Requests *controllers.RequestController
	GraphQL  *controllers.GraphQLController
}

func RegisterAPI(r *router.Router, c Controllers) {
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"app": "supplydesk", "state": "ok"})
	})

	api := r.Group("/api")
	api.Get("/catalog", "catalog.index", ctx.Wrap(c.Catalog.Index))

	logins := api.Group("", middleware.RateLimit("login", loginLimit(), time.Minute))
	logins.Post("/login", "auth.login", ctx.Wrap(c.Auth.Login))
	logins.Post("/admin/login", "auth.admin_login", ctx.Wrap(c.Auth.AdminLogin))

	signedIn := api.Group("", middleware.Authenticate)
	signedIn.Post("/requests", "requests.store", ctx.Wrap(c.Requests.Store),
		rbac.HasRole(auth.RoleUser, auth.RoleAdmin))
	signedIn.Post("/graphql", "graphql.query", ctx.Wrap(c.GraphQL.Query))

	admin := signedIn.Group("", rbac.Admin)
	admin.Get("/requests", "requests.index", ctx.Wrap(c.Requests.Index))
	admin.Patch("/requests/{id}/status", "requests.status", ctx.Wrap(c.Requests.UpdateStatus))
	admin.Delete("/requests/{id}", "requests.destroy", ctx.Wrap(c.Requests.Destroy))
	admin.Get("/recipients", "requests.recipients", ctx.Wrap(c.Requests.Recipients))
	admin.Post("/messages", "messages.store", ctx.Wrap(c.Requests.Message))
}

// loginLimit is LOGIN_RATE_LIMIT_PER_MINUTE, default 10.
func loginLimit() int {
	n, err := strconv.Atoi(config.Get("LOGIN_RATE_LIMIT_PER_MINUTE", "10"))
	if err != nil || n <= 0 {
		return 10
	}
	return n
}
