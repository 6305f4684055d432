// Package orders wires the order reconciliation surface into the HTTP app.
package orders

import (
	apphttp "transport_broker_backend/internal/http"
	"transport_broker_backend/internal/orders/handler"
	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"
)

// Module mounts the TMS webhook intake and the admin order endpoints.
type Module struct {
	handler    *handler.Handler
	webhookKey string
	log        *logger.Logger
}

// NewModule creates the orders HTTP module.
func NewModule(h *handler.Handler, cfg config.TMSConfig, log *logger.Logger) *Module {
	return &Module{
		handler:    h,
		webhookKey: cfg.GetTMSWebhookKey(),
		log:        log,
	}
}

func (m *Module) Name() string { return "orders" }

// RegisterRoutes mounts the webhook intake behind the shared key and rate
// limiter, and the admin endpoints on the admin group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	webhook := rc.V1.Group("/webhook/tms")
	webhook.Use(rc.RateLimiter.RateLimit())
	webhook.Use(handler.WebhookAuth(m.webhookKey, m.log))
	webhook.POST("/:event", m.handler.HandleWebhook)

	rc.Admin.GET("/orders/:orderId", m.handler.GetOrder)
	rc.Admin.POST("/orders/:orderId/pull", m.handler.PullOrder)
}
