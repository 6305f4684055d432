// Package handler exposes the orders HTTP surface: the TMS webhook intake
// and the admin endpoints.
package handler

import (
	"context"
	"net/http"

	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/orders/reconcile"
	"transport_broker_backend/internal/orders/tms"
	"transport_broker_backend/internal/orders/transport"
	"transport_broker_backend/internal/scheduler"
	"transport_broker_backend/platform/httpkit"
	"transport_broker_backend/platform/logger"
	"transport_broker_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// OrderReader is the read surface for the admin endpoints.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

// Handler carries the orders module's HTTP handlers.
type Handler struct {
	service   *reconcile.Service
	orders    OrderReader
	tasks     *scheduler.Client
	validator *validator.Validator
	log       *logger.Logger
}

// NewHandler creates the orders handler. tasks may be nil; pulls then run
// inline instead of being enqueued.
func NewHandler(service *reconcile.Service, orders OrderReader, tasks *scheduler.Client, v *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{
		service:   service,
		orders:    orders,
		tasks:     tasks,
		validator: v,
		log:       log,
	}
}

// HandleWebhook receives one external order event. The payload is parsed
// into the strict snapshot DTO at this boundary and applied synchronously.
func (h *Handler) HandleWebhook(c *gin.Context) {
	event := c.Param("event")
	if !transport.AllowedEvent(event) {
		httpkit.Error(c, http.StatusBadRequest, "unknown webhook event", gin.H{"event": event})
		return
	}

	var snapshot tms.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid webhook payload", err.Error())
		return
	}
	if err := h.validator.Struct(snapshot); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid webhook payload", err.Error())
		return
	}

	if err := h.service.ApplyWebhook(c.Request.Context(), &snapshot); err != nil {
		h.log.ReconciliationError(snapshot.ExternalID, err)
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.WebhookAccepted{Status: "reconciled", Event: event})
}

// GetOrder returns the persisted order document. Operations debugging
// surface.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetByID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, order)
}

// PullOrder triggers an on-demand pull-and-reconcile. With a task client the
// pull is enqueued; without one it runs inline.
func (h *Handler) PullOrder(c *gin.Context) {
	orderID := c.Param("orderId")

	if h.tasks != nil {
		if err := h.tasks.EnqueueOrderPull(orderID); err != nil {
			httpkit.HandleError(c, err)
			return
		}
		httpkit.JSON(c, http.StatusAccepted, transport.PullQueued{Status: "queued", OrderID: orderID})
		return
	}

	if err := h.service.Reconcile(c.Request.Context(), orderID); err != nil {
		h.log.ReconciliationError(orderID, err)
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.PullQueued{Status: "reconciled", OrderID: orderID})
}
