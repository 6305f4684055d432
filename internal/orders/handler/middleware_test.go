package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"transport_broker_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func webhookTestRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", WebhookAuth(key, logger.New("test")), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestWebhookAuthRejectsWithoutKey(t *testing.T) {
	r := webhookTestRouter("secret")

	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestWebhookAuthRejectsWrongKey(t *testing.T) {
	r := webhookTestRouter("secret")

	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	req.Header.Set(WebhookKeyHeader, "wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestWebhookAuthAcceptsMatchingKey(t *testing.T) {
	r := webhookTestRouter("secret")

	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	req.Header.Set(WebhookKeyHeader, "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestWebhookAuthDisabledWithoutConfiguredKey(t *testing.T) {
	r := webhookTestRouter("")

	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	req.Header.Set(WebhookKeyHeader, "anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
