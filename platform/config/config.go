// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetBrevoAPIKey() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// TMSConfig provides settings for the external transportation management system.
type TMSConfig interface {
	GetTMSBaseURL() string
	GetTMSAPIKey() string
	GetTMSWebhookKey() string
}

// ReconcileConfig provides settings for the order reconciliation core.
type ReconcileConfig interface {
	GetWithheldSentinel() string
	GetWhiteGloveTransportType() string
	GetReferenceTimezone() string
}

// NotificationConfig provides settings for the notification eligibility engine.
type NotificationConfig interface {
	GetMMIPortalIDs() []string
	GetMMIOpsMailbox() string
	GetSIRVAPortalID() string
	GetSurveyMinAge() time.Duration
	GetSurveyMaxAge() time.Duration
	GetPreSurveyMaxAge() time.Duration
	GetPreserveNotificationFlags() bool
	GetSurveyBaseURL() string
}

// SchedulerConfig provides settings for the asynq scheduler and sweep cadence.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetConfirmationSweepInterval() time.Duration
	GetSurveySweepInterval() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                       string
	HTTPAddr                  string
	DatabaseURL               string
	CORSAllowAll              bool
	CORSOrigins               []string
	EmailEnabled              bool
	BrevoAPIKey               string
	SMTPHost                  string
	SMTPPort                  int
	SMTPUsername              string
	SMTPPassword              string
	EmailFromName             string
	EmailFromAddress          string
	TMSBaseURL                string
	TMSAPIKey                 string
	TMSWebhookKey             string
	WithheldSentinel          string
	WhiteGloveTransportType   string
	ReferenceTimezone         string
	MMIPortalIDs              []string
	MMIOpsMailbox             string
	SIRVAPortalID             string
	SurveyMinAge              time.Duration
	SurveyMaxAge              time.Duration
	PreSurveyMaxAge           time.Duration
	PreserveNotificationFlags bool
	SurveyBaseURL             string
	RedisURL                  string
	RedisTLSInsecure          bool
	AsynqQueueName            string
	AsynqConcurrency          int
	ConfirmationSweepInterval time.Duration
	SurveySweepInterval       time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// TMSConfig implementation
func (c *Config) GetTMSBaseURL() string    { return c.TMSBaseURL }
func (c *Config) GetTMSAPIKey() string     { return c.TMSAPIKey }
func (c *Config) GetTMSWebhookKey() string { return c.TMSWebhookKey }

// ReconcileConfig implementation
func (c *Config) GetWithheldSentinel() string        { return c.WithheldSentinel }
func (c *Config) GetWhiteGloveTransportType() string { return c.WhiteGloveTransportType }
func (c *Config) GetReferenceTimezone() string       { return c.ReferenceTimezone }

// NotificationConfig implementation
func (c *Config) GetMMIPortalIDs() []string            { return c.MMIPortalIDs }
func (c *Config) GetMMIOpsMailbox() string             { return c.MMIOpsMailbox }
func (c *Config) GetSIRVAPortalID() string             { return c.SIRVAPortalID }
func (c *Config) GetSurveyMinAge() time.Duration       { return c.SurveyMinAge }
func (c *Config) GetSurveyMaxAge() time.Duration       { return c.SurveyMaxAge }
func (c *Config) GetPreSurveyMaxAge() time.Duration    { return c.PreSurveyMaxAge }
func (c *Config) GetPreserveNotificationFlags() bool   { return c.PreserveNotificationFlags }
func (c *Config) GetSurveyBaseURL() string             { return c.SurveyBaseURL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool    { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string    { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int     { return c.AsynqConcurrency }
func (c *Config) GetConfirmationSweepInterval() time.Duration {
	return c.ConfirmationSweepInterval
}
func (c *Config) GetSurveySweepInterval() time.Duration { return c.SurveySweepInterval }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	brevoAPIKey := getEnv("BREVO_API_KEY", "")
	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                       getEnv("APP_ENV", "development"),
		HTTPAddr:                  getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		CORSAllowAll:              strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true"),
		CORSOrigins:               splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200")),
		EmailEnabled:              emailEnabled && (brevoAPIKey != "" || smtpHost != ""),
		BrevoAPIKey:               brevoAPIKey,
		SMTPHost:                  smtpHost,
		SMTPPort:                  mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:              getEnv("SMTP_USERNAME", ""),
		SMTPPassword:              getEnv("SMTP_PASSWORD", ""),
		EmailFromName:             getEnv("EMAIL_FROM_NAME", "Transport Broker"),
		EmailFromAddress:          getEnv("EMAIL_FROM_ADDRESS", ""),
		TMSBaseURL:                getEnv("TMS_API_BASE_URL", ""),
		TMSAPIKey:                 getEnv("TMS_API_KEY", ""),
		TMSWebhookKey:             getEnv("TMS_WEBHOOK_KEY", ""),
		WithheldSentinel:          getEnv("WITHHELD_ADDRESS_SENTINEL", "address withheld"),
		WhiteGloveTransportType:   getEnv("WHITE_GLOVE_TRANSPORT_TYPE", "White Glove"),
		ReferenceTimezone:         getEnv("REFERENCE_TIMEZONE", "America/Chicago"),
		MMIPortalIDs:              splitCSV(getEnv("MMI_PORTAL_IDS", "")),
		MMIOpsMailbox:             getEnv("MMI_OPS_MAILBOX", ""),
		SIRVAPortalID:             getEnv("SIRVA_PORTAL_ID", ""),
		SurveyMinAge:              time.Duration(mustInt(getEnv("SURVEY_MIN_HOURS", "48"))) * time.Hour,
		SurveyMaxAge:              time.Duration(mustInt(getEnv("SURVEY_MAX_HOURS", "72"))) * time.Hour,
		PreSurveyMaxAge:           time.Duration(mustInt(getEnv("MMI_PRESURVEY_MAX_HOURS", "24"))) * time.Hour,
		PreserveNotificationFlags: strings.EqualFold(getEnv("PRESERVE_NOTIFICATION_FLAGS", "false"), "true"),
		SurveyBaseURL:             getEnv("SURVEY_BASE_URL", ""),
		RedisURL:                  getEnv("REDIS_URL", ""),
		RedisTLSInsecure:          strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:            getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:          mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		ConfirmationSweepInterval: mustDuration(getEnv("CONFIRMATION_SWEEP_INTERVAL", "4h")),
		SurveySweepInterval:       mustDuration(getEnv("SURVEY_SWEEP_INTERVAL", "24h")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.SurveyMinAge >= cfg.SurveyMaxAge {
		return nil, fmt.Errorf("SURVEY_MIN_HOURS must be below SURVEY_MAX_HOURS")
	}
	if _, err := time.LoadLocation(cfg.ReferenceTimezone); err != nil {
		return nil, fmt.Errorf("REFERENCE_TIMEZONE is invalid: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
