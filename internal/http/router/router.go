// Package router builds the gin engine with platform middleware applied.
package router

import (
	"context"
	"net/http"
	"time"

	"transport_broker_backend/platform/httpkit"
	"transport_broker_backend/platform/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Config holds router-level settings.
type Config struct {
	Environment    string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Groups exposes the route groups modules mount on.
type Groups struct {
	V1          *gin.RouterGroup
	Admin       *gin.RouterGroup
	RateLimiter *httpkit.IPRateLimiter
}

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// New builds the gin engine with recovery, request logging, security headers,
// CORS, a health endpoint, and the API route groups.
func New(cfg Config, log *logger.Logger, health HealthChecker) (*gin.Engine, Groups) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(log))
	engine.Use(httpkit.SecurityHeaders())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-TMS-Webhook-Key")
	engine.Use(cors.New(corsConfig))

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 30
	}
	limiter := httpkit.NewIPRateLimiter(rate.Limit(rps), burst, log)

	engine.GET("/api/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		overall, database := "ok", "ok"
		if health != nil {
			if err := health.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				overall, database = "degraded", "unreachable"
			}
		}
		c.JSON(status, gin.H{
			"status":   overall,
			"database": database,
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := engine.Group("/api/v1")
	admin := v1.Group("/admin")

	return engine, Groups{V1: v1, Admin: admin, RateLimiter: limiter}
}
