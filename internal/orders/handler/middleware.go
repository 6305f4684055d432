package handler

import (
	"crypto/subtle"
	"net/http"

	"transport_broker_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// WebhookKeyHeader carries the shared secret on inbound TMS webhooks.
const WebhookKeyHeader = "X-TMS-Webhook-Key"

// WebhookAuth rejects webhook calls without the configured shared key. The
// comparison is constant time.
func WebhookAuth(key string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			log.Error("webhook key not configured, rejecting intake")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "webhook intake disabled"})
			return
		}

		provided := c.GetHeader(WebhookKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			log.Warn("webhook auth failed", "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook key"})
			return
		}

		c.Next()
	}
}
