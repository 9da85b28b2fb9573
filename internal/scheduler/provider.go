// Package scheduler defines the provider contract over external calendar
// backends and the per-tenant selection machinery. Two implementations exist:
// googlecal (OAuth Google Calendar) and restagenda (generic REST scheduler).
// Callers never branch on the concrete type; errors from both backends are
// normalized into the scheduling taxonomy.
package scheduler

import (
	"context"
	"time"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
)

// CreateRequest carries everything a backend needs to create an event.
type CreateRequest struct {
	ClientName      string
	Phone           string
	Service         string
	Start           time.Time
	DurationMinutes int
	Notes           string
}

// CreateResult is the backend's answer to a successful create.
type CreateResult struct {
	ExternalEventID string
	Link            string
}

// Provider is the uniform contract over external scheduling backends.
type Provider interface {
	// Type identifies the backend serving this tenant.
	Type() scheduling.SchedulerType

	// GetBusy returns the occupied intervals inside the window.
	GetBusy(ctx context.Context, window scheduling.Interval) ([]scheduling.Interval, error)

	// GetAvailableSlots returns open starts inside the window for the given
	// duration, honoring the tenant's buffer.
	GetAvailableSlots(ctx context.Context, window scheduling.Interval, durationMinutes, bufferMinutes int) ([]scheduling.Slot, error)

	// IsSlotFree reports whether [start, start+duration) is bookable.
	IsSlotFree(ctx context.Context, start time.Time, durationMinutes, bufferMinutes int) (bool, error)

	// CreateAppointment books the slot and returns the external event id.
	CreateAppointment(ctx context.Context, req CreateRequest) (*CreateResult, error)

	// DeleteAppointment cancels the event behind an external id.
	DeleteAppointment(ctx context.Context, externalEventID string) error
}
