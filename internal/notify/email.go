package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// TenantEmailLookup resolves the notification address for a tenant.
type TenantEmailLookup func(ctx context.Context, tenantID string) (string, error)

// EmailNotifier emails the tenant about each confirmed booking via SendGrid.
type EmailNotifier struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	lookup    TenantEmailLookup
	logger    *logging.Logger
}

// EmailConfig holds SendGrid settings.
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewEmailNotifier creates the SendGrid notifier. Returns nil when no API key
// is configured so callers can fall back to LogNotifier.
func NewEmailNotifier(cfg EmailConfig, lookup TenantEmailLookup, logger *logging.Logger) *EmailNotifier {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Agenda"
	}
	return &EmailNotifier{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		lookup:    lookup,
		logger:    logger,
	}
}

func (n *EmailNotifier) AppointmentConfirmed(ctx context.Context, c Confirmation) error {
	to, err := n.lookup(ctx, c.TenantID)
	if err != nil {
		return fmt.Errorf("notify: resolve tenant email: %w", err)
	}
	if to == "" {
		n.logger.Debug("notify: tenant has no notification email", "tenant_id", c.TenantID)
		return nil
	}

	subject := fmt.Sprintf("Novo agendamento: %s", c.Service)
	body := fmt.Sprintf(
		"Cliente: %s\nTelefone: %s\nServiço: %s\nHorário: %s\nReferência: %s\n",
		c.ClientName, c.Phone, c.Service, c.StartLocal, c.AppointmentID,
	)

	message := mail.NewSingleEmail(
		mail.NewEmail(n.fromName, n.fromEmail),
		subject,
		mail.NewEmail("", to),
		body,
		"",
	)
	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: sendgrid status %d", resp.StatusCode)
	}
	n.logger.Info("confirmation email sent", "tenant_id", c.TenantID, "appointment_id", c.AppointmentID)
	return nil
}
