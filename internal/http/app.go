package http

import (
	"context"

	"transport_broker_backend/internal/http/router"
	"transport_broker_backend/platform/events"
	"transport_broker_backend/platform/logger"
	"transport_broker_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App bundles everything needed to build the HTTP router.
type App struct {
	Config    router.Config
	Logger    *logger.Logger
	Validator *validator.Validator
	Health    HealthChecker
	EventBus  events.Bus
	Modules   []Module
}

// BuildRouter constructs the gin engine, mounts platform middleware, and
// registers every module's routes.
func (a *App) BuildRouter() *gin.Engine {
	engine, rc := router.New(a.Config, a.Logger, a.Health)
	ctx := &RouterContext{
		Engine:      engine,
		V1:          rc.V1,
		Admin:       rc.Admin,
		Logger:      a.Logger,
		Validator:   a.Validator,
		RateLimiter: rc.RateLimiter,
	}

	for _, m := range a.Modules {
		m.RegisterRoutes(ctx)
		a.Logger.Info("module routes registered", "module", m.Name())
	}

	return engine
}
