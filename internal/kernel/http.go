package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/supplydesk/app/routes"
	"github.com/shashiranjanraj/supplydesk/config"
	"github.com/shashiranjanraj/supplydesk/pkg/metrics"
	"github.com/shashiranjanraj/supplydesk/pkg/middleware"
	"github.com/shashiranjanraj/supplydesk/pkg/reqid"
	"github.com/shashiranjanraj/supplydesk/pkg/router"
)

// NewRouter mounts the global middleware, /metrics and the API routes.
//
// Middleware order (outermost → innermost):
//  1. Prometheus metrics, for total latency
//  2. Recovery
//  3. Request ID, before anything logs
//  4. Logger
//  5. CORS
//  6. Rate limiter
func NewRouter(c routes.Controllers) *router.Router {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit("api", config.RateLimitPerMinute(), time.Minute))

	r.Get("/metrics", "metrics", metrics.Handler())
	routes.RegisterAPI(r, c)
	return r
}

// Handler is the app's complete HTTP handler.
func (a *App) Handler() http.Handler {
	return NewRouter(a.Controllers()).Handler()
}
