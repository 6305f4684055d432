package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoSender delivers emails through the Brevo transactional HTTP API.
type BrevoSender struct {
	apiKey      string
	fromName    string
	fromAddress string
	httpClient  *http.Client
	log         *logger.Logger
}

// NewBrevoSender creates a Brevo-backed sender.
func NewBrevoSender(cfg config.EmailConfig, log *logger.Logger) *BrevoSender {
	return &BrevoSender{
		apiKey:      cfg.GetBrevoAPIKey(),
		fromName:    cfg.GetEmailFromName(),
		fromAddress: cfg.GetEmailFromAddress(),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		log:         log,
	}
}

type brevoParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoPayload struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

func (s *BrevoSender) deliver(ctx context.Context, to, subject, html string) error {
	payload := brevoPayload{
		Sender:      brevoParty{Name: s.fromName, Email: s.fromAddress},
		To:          []brevoParty{{Email: to}},
		Subject:     subject,
		HTMLContent: html,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode brevo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build brevo request: %w", err)
	}
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("brevo returned status %d: %s", resp.StatusCode, string(respBody))
	}

	s.log.Debug("brevo email sent", "to", to, "subject", subject)
	return nil
}

func (s *BrevoSender) SendPickupConfirmation(ctx context.Context, to string, data ConfirmationData) error {
	subject, html, err := renderPickupConfirmation(data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, to, subject, html)
}

func (s *BrevoSender) SendDeliveryConfirmation(ctx context.Context, to string, data ConfirmationData) error {
	subject, html, err := renderDeliveryConfirmation(data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, to, subject, html)
}

func (s *BrevoSender) SendSurvey(ctx context.Context, to string, data SurveyData) error {
	subject, html, err := renderSurvey(data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, to, subject, html)
}

func (s *BrevoSender) SendPreSurvey(ctx context.Context, to string, data SurveyData) error {
	subject, html, err := renderPreSurvey(data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, to, subject, html)
}
