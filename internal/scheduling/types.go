// Package scheduling holds the shared booking vocabulary: time intervals,
// candidate slots and the error taxonomy used across scheduler providers.
package scheduling

import "time"

// Interval is a half-open time range [Start, End). Never persisted.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Slot is a candidate appointment start of a given duration.
type Slot struct {
	Start      time.Time `json:"-"`
	StartISO   string    `json:"start_iso"`
	StartLocal string    `json:"start_local"`
}

// NewSlot builds a Slot rendering the start in the given location.
func NewSlot(start time.Time, loc *time.Location) Slot {
	if loc == nil {
		loc = time.UTC
	}
	local := start.In(loc)
	return Slot{
		Start:      start,
		StartISO:   start.Format(time.RFC3339),
		StartLocal: local.Format("02/01/2006 15:04"),
	}
}

// TimeOfDay is an hour/minute pair extracted from chat text.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// BusinessHours bounds candidate starts to the tenant's working day.
type BusinessHours struct {
	StartHour int
	EndHour   int
}

// Contains reports whether a start at the given local time falls inside the
// working day. The end hour is exclusive for starts.
func (b BusinessHours) Contains(t time.Time) bool {
	h := t.Hour()
	return h >= b.StartHour && h < b.EndHour
}

// SchedulerType identifies which external backend serves a tenant.
type SchedulerType string

const (
	// SchedulerGoogle is the OAuth Google Calendar backend.
	SchedulerGoogle SchedulerType = "google"
	// SchedulerAgendaAPI is the generic REST scheduler backend.
	SchedulerAgendaAPI SchedulerType = "agenda_api"
)

// Valid reports whether the scheduler type is one we can serve.
func (s SchedulerType) Valid() bool {
	return s == SchedulerGoogle || s == SchedulerAgendaAPI
}
