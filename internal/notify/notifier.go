// Package notify delivers booking confirmations to the tenant. Delivery is
// best effort: a notification failure never rolls back the booking it
// announces.
package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// Confirmation describes a booked appointment for the notification renderer.
type Confirmation struct {
	TenantID      string
	AppointmentID uuid.UUID
	Phone         string
	ClientName    string
	Service       string
	StartLocal    string
}

// Notifier announces confirmed bookings.
type Notifier interface {
	AppointmentConfirmed(ctx context.Context, c Confirmation) error
}

// LogNotifier is the fallback used when no delivery channel is configured.
type LogNotifier struct {
	logger *logging.Logger
}

// NewLogNotifier creates a notifier that only records the event.
func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) AppointmentConfirmed(_ context.Context, c Confirmation) error {
	n.logger.Info("appointment confirmed notification",
		"tenant_id", c.TenantID,
		"appointment_id", c.AppointmentID,
		"phone", c.Phone,
		"service", c.Service,
		"start_local", c.StartLocal,
	)
	return nil
}
