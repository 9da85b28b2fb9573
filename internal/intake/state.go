// Package intake drives the per-conversation booking flow: it fills the
// client name, service, date and time from chat turns, checks availability,
// negotiates alternates and hands completed bookings to the appointment
// store.
package intake

import (
	"time"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/extract"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
)

// ProfileConfig carries the per-profile booking parameters cached on the
// conversation.
type ProfileConfig struct {
	ServiceDurationMinutes int `json:"service_duration_minutes"`
	BufferMinutes          int `json:"buffer_minutes"`
}

// StoredSlot is the session representation of a suggested slot.
type StoredSlot struct {
	StartISO   string `json:"start_iso"`
	StartLocal string `json:"start_local"`
}

// State is the volatile per-conversation intake state, keyed by
// tenant+phone. It is never persisted beyond the session store TTL.
type State struct {
	Name           string         `json:"name,omitempty"`
	Service        string         `json:"service,omitempty"`
	DateOnly       *time.Time     `json:"date_only,omitempty"`
	Clock          *extract.Clock `json:"clock,omitempty"`
	AwaitingChoice bool           `json:"awaiting_choice,omitempty"`
	SuggestedSlots []StoredSlot   `json:"suggested_slots,omitempty"`
	Profile        ProfileConfig  `json:"profile"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Complete reports whether all four booking fields are collected.
func (s *State) Complete() bool {
	return s.Name != "" && s.Service != "" && s.DateOnly != nil && s.Clock != nil
}

// NextMissing names the next field to prompt for, in the fixed collection
// order name, service, date, time.
func (s *State) NextMissing() string {
	switch {
	case s.Name == "":
		return "name"
	case s.Service == "":
		return "service"
	case s.DateOnly == nil:
		return "date"
	case s.Clock == nil:
		return "time"
	default:
		return ""
	}
}

// StartTime combines the collected date and time in the given location.
func (s *State) StartTime(loc *time.Location) time.Time {
	if s.DateOnly == nil || s.Clock == nil {
		return time.Time{}
	}
	d := s.DateOnly.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), s.Clock.Hour, s.Clock.Minute, 0, 0, loc)
}

func storedSlots(slots []scheduling.Slot, max int) []StoredSlot {
	if max <= 0 {
		max = 3
	}
	out := make([]StoredSlot, 0, max)
	for _, s := range slots {
		out = append(out, StoredSlot{StartISO: s.StartISO, StartLocal: s.StartLocal})
		if len(out) >= max {
			break
		}
	}
	return out
}
