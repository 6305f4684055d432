// Package http wires the HTTP application together.
package http

import (
	"transport_broker_backend/platform/httpkit"
	"transport_broker_backend/platform/logger"
	"transport_broker_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Module is implemented by feature modules that expose HTTP routes.
type Module interface {
	// Name returns the module name for logging.
	Name() string
	// RegisterRoutes mounts the module's routes on the shared router groups.
	RegisterRoutes(rc *RouterContext)
}

// RouterContext carries the router groups and shared infrastructure that
// modules register against.
type RouterContext struct {
	// Engine is the root gin engine, for routes outside the API prefix.
	Engine *gin.Engine
	// V1 is the /api/v1 group. Webhook and public routes mount here.
	V1 *gin.RouterGroup
	// Admin is the /api/v1/admin group for operational endpoints.
	Admin *gin.RouterGroup

	Logger      *logger.Logger
	Validator   *validator.Validator
	RateLimiter *httpkit.IPRateLimiter
}
