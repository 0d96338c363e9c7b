// Package kernel wires SupplyDesk together: storage, cache, mail,
// notifications and services, plus the HTTP handler that serves them.
// Both the server and the CLI start from Boot.
package kernel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/supplydesk/app/controllers"
	"github.com/shashiranjanraj/supplydesk/app/graphql"
	"github.com/shashiranjanraj/supplydesk/app/notifier"
	"github.com/shashiranjanraj/supplydesk/app/repositories"
	"github.com/shashiranjanraj/supplydesk/app/routes"
	"github.com/shashiranjanraj/supplydesk/app/services"
	"github.com/shashiranjanraj/supplydesk/config"
	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/cache"
	"github.com/shashiranjanraj/supplydesk/pkg/database"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/mail"
	"github.com/shashiranjanraj/supplydesk/pkg/middleware"
	"github.com/shashiranjanraj/supplydesk/pkg/notification"
	"github.com/shashiranjanraj/supplydesk/pkg/workerpool"
)

const (
	announceWorkers = 4
	announceTimeout = 30 * time.Second
	drainTimeout    = 10 * time.Second
)

// App is the wired object graph.
type App struct {
	DB       *gorm.DB
	Store    *repositories.RequestRepository
	Requests *services.RequestService
	Auth     *services.AuthService

	redis      *cache.Redis
	background *workerpool.Pool
	logSink    *logger.MongoSink
}

// Deps are the pieces New needs. Cache may be nil.
type Deps struct {
	DB           *gorm.DB
	Cache        cache.Store
	Mail         mail.Transport
	Credentials  auth.CredentialProvider
	SlackWebhook string
}

func New(d Deps) *App {
	store := repositories.NewRequestRepository(d.DB, d.Cache)
	bg := workerpool.New("announce", announceWorkers, announceTimeout)
	n := notifier.New(notification.NewDispatcher(d.Mail, d.SlackWebhook)).InBackground(bg)

	return &App{
		DB:         d.DB,
		Store:      store,
		Requests:   services.NewRequestService(store, n),
		Auth:       services.NewAuthService(d.Credentials),
		background: bg,
	}
}

// Boot loads config and connects everything the config names. Redis is
// optional: when it cannot be reached the list cache is disabled.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}

	transport, err := mail.Boot()
	if err != nil {
		return nil, err
	}
	creds, err := auth.CredentialsFromConfig()
	if err != nil {
		return nil, fmt.Errorf("admin credentials: %w", err)
	}

	deps := Deps{
		DB:           database.DB,
		Mail:         transport,
		Credentials:  creds,
		SlackWebhook: config.SlackWebhookURL(),
	}

	rdb, err := cache.Connect(ctx)
	if err != nil {
		logger.Warn("redis unavailable, request list cache disabled", "error", err)
	} else {
		deps.Cache = rdb
		if err := middleware.UseRedisRateStore(rdb.Client()); err != nil {
			logger.Warn("rate limits fall back to process memory", "error", err)
		}
	}

	a := New(deps)
	a.redis = rdb
	a.logSink = shipLogs(ctx)
	logger.Info("supplydesk booted",
		"db_driver", config.DatabaseDriver(),
		"mail", transport.Name(),
		"slack", deps.SlackWebhook != "",
		"cache", rdb != nil,
	)
	return a, nil
}

// shipLogs copies log lines to MongoDB when LOG_MONGO_URI is set. An
// unreachable server only disables shipping.
func shipLogs(ctx context.Context) *logger.MongoSink {
	uri := config.Get("LOG_MONGO_URI", "")
	if uri == "" {
		return nil
	}
	sink, err := logger.DialMongo(ctx, uri,
		config.Get("LOG_MONGO_DB", "supplydesk"),
		config.Get("LOG_MONGO_COLLECTION", "logs"),
		slog.LevelInfo)
	if err != nil {
		logger.Warn("log shipping disabled", "error", err)
		return nil
	}
	logger.Also(sink)
	return sink
}

// Controllers builds the HTTP handlers over the app's services.
func (a *App) Controllers() routes.Controllers {
	return routes.Controllers{
		Auth:     controllers.NewAuthController(a.Auth),
		Catalog:  controllers.NewCatalogController(),
		Requests: controllers.NewRequestController(a.Requests),
		GraphQL:  controllers.NewGraphQLController(graphql.MustSchema(a.Requests)),
	}
}

// Ping reports whether the database answers. It backs the gRPC readiness
// probe.
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close drains background work, then releases the Redis client and the
// database pool.
func (a *App) Close() error {
	if a.background != nil {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		if err := a.background.Shutdown(ctx); err != nil {
			logger.Warn("background work not drained", "error", err)
		}
		cancel()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.logSink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		_ = a.logSink.Close(ctx)
		cancel()
	}
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
