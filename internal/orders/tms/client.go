package tms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"transport_broker_backend/platform/apperr"
	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"
)

// Client pulls order snapshots from the external system.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

// NewClient creates a TMS pull client.
func NewClient(cfg config.TMSConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.GetTMSBaseURL(),
		apiKey:     cfg.GetTMSAPIKey(),
		log:        log,
	}
}

// GetOrder fetches the snapshot for one external order id.
func (c *Client) GetOrder(ctx context.Context, externalID string) (*Snapshot, error) {
	if c.baseURL == "" {
		return nil, apperr.Internal("tms base url is not configured")
	}

	endpoint := fmt.Sprintf("%s/orders/%s", c.baseURL, url.PathEscape(externalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tms request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tms request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.NotFound(fmt.Sprintf("tms order %s not found", externalID))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.Unavailable(fmt.Sprintf("tms returned status %d: %s", resp.StatusCode, string(body)))
	}

	var snapshot Snapshot
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode tms snapshot: %w", err)
	}

	return &snapshot, nil
}
