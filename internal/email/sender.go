// Package email sends order notification emails. Two transports exist:
// the Brevo HTTP API and plain SMTP; the factory picks one from config.
package email

import (
	"context"

	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"
)

// ConfirmationData is the template context for pickup/delivery confirmations.
type ConfirmationData struct {
	OrderRef       int64
	CustomerName   string
	VehicleSummary string
	When           string
	City           string
}

// SurveyData is the template context for survey and pre-survey emails.
type SurveyData struct {
	OrderRef     int64
	CustomerName string
	SurveyURL    string
}

// Sender delivers one email to one recipient. The notification engine fans
// out across recipients and records each outcome independently.
type Sender interface {
	SendPickupConfirmation(ctx context.Context, to string, data ConfirmationData) error
	SendDeliveryConfirmation(ctx context.Context, to string, data ConfirmationData) error
	SendSurvey(ctx context.Context, to string, data SurveyData) error
	SendPreSurvey(ctx context.Context, to string, data SurveyData) error
}

// NewSender picks the transport from config: Brevo when an API key is set,
// SMTP when a host is set, otherwise a no-op sender that only logs.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		log.Info("email disabled, using noop sender")
		return &NoopSender{log: log}
	}
	if cfg.GetBrevoAPIKey() != "" {
		return NewBrevoSender(cfg, log)
	}
	if cfg.GetSMTPHost() != "" {
		return NewSMTPSender(cfg, log)
	}
	log.Warn("email enabled but no transport configured, using noop sender")
	return &NoopSender{log: log}
}

// NoopSender logs instead of sending. Used in development and when email is
// disabled.
type NoopSender struct {
	log *logger.Logger
}

func (s *NoopSender) send(kind, to string) error {
	s.log.Info("email suppressed", "kind", kind, "to", to)
	return nil
}

func (s *NoopSender) SendPickupConfirmation(_ context.Context, to string, _ ConfirmationData) error {
	return s.send("pickup_confirmation", to)
}

func (s *NoopSender) SendDeliveryConfirmation(_ context.Context, to string, _ ConfirmationData) error {
	return s.send("delivery_confirmation", to)
}

func (s *NoopSender) SendSurvey(_ context.Context, to string, _ SurveyData) error {
	return s.send("survey", to)
}

func (s *NoopSender) SendPreSurvey(_ context.Context, to string, _ SurveyData) error {
	return s.send("pre_survey", to)
}
