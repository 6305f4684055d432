package email

import (
	"context"
	"fmt"

	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers emails over plain SMTP.
type SMTPSender struct {
	host        string
	port        int
	username    string
	password    string
	fromName    string
	fromAddress string
	log         *logger.Logger
}

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(cfg config.EmailConfig, log *logger.Logger) *SMTPSender {
	return &SMTPSender{
		host:        cfg.GetSMTPHost(),
		port:        cfg.GetSMTPPort(),
		username:    cfg.GetSMTPUsername(),
		password:    cfg.GetSMTPPassword(),
		fromName:    cfg.GetEmailFromName(),
		fromAddress: cfg.GetEmailFromAddress(),
		log:         log,
	}
}

func (s *SMTPSender) deliver(ctx context.Context, to, subject, html string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromAddress); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, html)

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send smtp mail: %w", err)
	}

	s.log.Debug("smtp email sent", "to", to, "subject", subject)
	return nil
}

func (s *SMTPSender) SendPickupConfirmation(ctx context.Context, to string, data ConfirmationData) error {
	subject, html, err := renderPickupConfirmation(data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, to, subject, html)
}

func (s *SMTPSender) SendDeliveryConfirmation(ctx context.Context, to string, data ConfirmationData) error {
	subject, html, err := renderDeliveryConfirmation(data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, to, subject, html)
}

func (s *SMTPSender) SendSurvey(ctx context.Context, to string, data SurveyData) error {
	subject, html, err := renderSurvey(data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, to, subject, html)
}

func (s *SMTPSender) SendPreSurvey(ctx context.Context, to string, data SurveyData) error {
	subject, html, err := renderPreSurvey(data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, to, subject, html)
}
