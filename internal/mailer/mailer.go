package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/apnadera/backend-go/internal/config"
)

// Inquiry is a fully specified property inquiry to be delivered by mail.
type Inquiry struct {
	PropertyID    uint
	PropertyTitle string
	ContactName   string
	ContactEmail  string
	ContactPhone  string
	Message       string
	RecipientName string
	RecipientType string
	RecipientMail string
}

// Mailer accepts rendered messages for delivery. Implementations only
// report immediate dispatch errors; delivery confirmation is not
// observed.
type Mailer interface {
	// SendInquiry delivers the inquiry to the property's contact.
	SendInquiry(ctx context.Context, inquiry Inquiry) error

	// SendConfirmation delivers a copy back to the person who asked.
	SendConfirmation(ctx context.Context, inquiry Inquiry) error
}

type smtpMailer struct {
	client *gomail.Client
	from   string
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer backed by the configured SMTP relay.
func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) (Mailer, error) {
	client, err := gomail.NewClient(cfg.SMTPHost,
		gomail.WithPort(int(cfg.SMTPPort)),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.SMTPUser),
		gomail.WithPassword(cfg.SMTPPassword),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	logger.Info("📧 [Mailer] SMTP mailer configured", "host", cfg.SMTPHost, "port", cfg.SMTPPort)

	return &smtpMailer{
		client: client,
		from:   cfg.SMTPFrom,
		logger: logger,
	}, nil
}

func (m *smtpMailer) SendInquiry(ctx context.Context, inquiry Inquiry) error {
	body, err := render(inquiryTemplate, inquiry)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New Property Inquiry - %s", inquiry.PropertyTitle)
	return m.send(ctx, inquiry.RecipientMail, subject, body)
}

func (m *smtpMailer) SendConfirmation(ctx context.Context, inquiry Inquiry) error {
	body, err := render(confirmationTemplate, inquiry)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Inquiry Sent - %s", inquiry.PropertyTitle)
	return m.send(ctx, inquiry.ContactEmail, subject, body)
}

func (m *smtpMailer) send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("❌ [Mailer] Failed to send mail", "to", to, "subject", subject, "error", err)
		return err
	}

	m.logger.Info("✅ [Mailer] Mail dispatched", "to", to, "subject", subject)
	return nil
}

func render(tmpl *template.Template, inquiry Inquiry) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, inquiry); err != nil {
		return "", fmt.Errorf("failed to render mail template: %w", err)
	}
	return buf.String(), nil
}

// noopMailer logs instead of sending. Used when no SMTP credentials are
// configured so development environments work without a relay.
type noopMailer struct {
	logger *slog.Logger
}

// NewNoopMailer creates a mailer that only logs.
func NewNoopMailer(logger *slog.Logger) Mailer {
	logger.Warn("⚠️ [Mailer] SMTP not configured, mail delivery disabled")
	return &noopMailer{logger: logger}
}

func (m *noopMailer) SendInquiry(ctx context.Context, inquiry Inquiry) error {
	m.logger.Info("📧 [Mailer] (noop) inquiry mail skipped",
		"property_id", inquiry.PropertyID,
		"to", inquiry.RecipientMail,
	)
	return nil
}

func (m *noopMailer) SendConfirmation(ctx context.Context, inquiry Inquiry) error {
	m.logger.Info("📧 [Mailer] (noop) confirmation mail skipped",
		"property_id", inquiry.PropertyID,
		"to", inquiry.ContactEmail,
	)
	return nil
}
