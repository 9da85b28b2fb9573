// Package appointments persists confirmed bookings and enforces the
// duplicate-suppression rules around them.
package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
)

// Status of a stored appointment. The only legal transition is
// confirmed -> cancelled; cancelled is terminal.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// DedupWindow is the tolerance used to treat two bookings for the same
// tenant+phone as duplicates.
const DedupWindow = time.Hour

// Appointment is the durable booking record.
type Appointment struct {
	ID         uuid.UUID
	TenantID   string
	ProfileID  string
	Phone      string
	ClientName string
	Service    string
	StartTime  time.Time
	EndTime    time.Time
	Status     Status
	// ExternalEventID is nil only when the external create failed or was
	// never attempted; a confirmed appointment must carry one.
	ExternalEventID *string
	SchedulerType   scheduling.SchedulerType
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the structural invariants before persistence.
func (a *Appointment) Validate() error {
	if a.TenantID == "" || a.Phone == "" {
		return scheduling.Errorf(scheduling.ClassValidation, "appointment_validate", "tenant id and phone are required")
	}
	if !a.EndTime.After(a.StartTime) {
		return scheduling.Errorf(scheduling.ClassValidation, "appointment_validate", "end time %v not after start %v", a.EndTime, a.StartTime)
	}
	if a.Status == StatusConfirmed && (a.ExternalEventID == nil || *a.ExternalEventID == "") {
		return scheduling.Errorf(scheduling.ClassValidation, "appointment_validate", "confirmed appointment without external event id")
	}
	return nil
}
