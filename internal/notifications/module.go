package notifications

import (
	"net/http"

	apphttp "transport_broker_backend/internal/http"
	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/httpkit"
	"transport_broker_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module exposes the on-demand sweep triggers.
type Module struct {
	engine          *Engine
	defaultPreserve bool
	log             *logger.Logger
}

// NewModule creates the notifications HTTP module.
func NewModule(engine *Engine, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		engine:          engine,
		defaultPreserve: cfg.GetPreserveNotificationFlags(),
		log:             log,
	}
}

func (m *Module) Name() string { return "notifications" }

// RegisterRoutes mounts the admin sweep endpoints.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	rc.Admin.POST("/notifications/confirmations/run", m.runConfirmations)
	rc.Admin.POST("/notifications/surveys/run", m.runSurveys)
}

// runConfirmations triggers one confirmation sweep. The preserveFlags query
// parameter forces a catch-up run that sends without clearing flags.
func (m *Module) runConfirmations(c *gin.Context) {
	preserve := m.defaultPreserve
	switch c.Query("preserveFlags") {
	case "true", "1":
		preserve = true
	case "false", "0":
		preserve = false
	}

	if err := m.engine.RunConfirmationSweep(c.Request.Context(), SweepOptions{PreserveFlags: preserve}); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"status": "completed", "preserveFlags": preserve})
}

func (m *Module) runSurveys(c *gin.Context) {
	if err := m.engine.RunSurveySweep(c.Request.Context()); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"status": "completed"})
}
