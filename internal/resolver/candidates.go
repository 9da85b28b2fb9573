package resolver

import (
	"time"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
)

// Candidates lazily yields alternate starts for a rejected slot, in priority
// order: forward 30-minute steps up to +6h on the same day, backward
// 30-minute steps down to -2h on the same day, then hourly starts inside
// business hours for each of the next three days. Candidates in the past or
// outside business hours are skipped.
type Candidates struct {
	requested time.Time
	now       time.Time
	hours     scheduling.BusinessHours

	phase int
	step  int
}

const (
	phaseForward = iota
	phaseBackward
	phaseNextDays
	phaseDone

	forwardSteps  = 12 // +30m .. +6h
	backwardSteps = 4  // -30m .. -2h
	nextDays      = 3
)

// NewCandidates builds the generator for a rejected requested start.
func NewCandidates(requested, now time.Time, hours scheduling.BusinessHours) *Candidates {
	return &Candidates{requested: requested, now: now, hours: hours}
}

// Next yields the following acceptable candidate, or false when exhausted.
func (c *Candidates) Next() (time.Time, bool) {
	for {
		candidate, ok := c.rawNext()
		if !ok {
			return time.Time{}, false
		}
		if !candidate.After(c.now) {
			continue
		}
		if !c.hours.Contains(candidate) {
			continue
		}
		return candidate, true
	}
}

func (c *Candidates) rawNext() (time.Time, bool) {
	switch c.phase {
	case phaseForward:
		c.step++
		if c.step > forwardSteps {
			c.phase, c.step = phaseBackward, 0
			return c.rawNext()
		}
		candidate := c.requested.Add(time.Duration(c.step) * 30 * time.Minute)
		if !sameDay(candidate, c.requested) {
			c.phase, c.step = phaseBackward, 0
			return c.rawNext()
		}
		return candidate, true

	case phaseBackward:
		c.step++
		if c.step > backwardSteps {
			c.phase, c.step = phaseNextDays, 0
			return c.rawNext()
		}
		candidate := c.requested.Add(-time.Duration(c.step) * 30 * time.Minute)
		if !sameDay(candidate, c.requested) {
			c.phase, c.step = phaseNextDays, 0
			return c.rawNext()
		}
		return candidate, true

	case phaseNextDays:
		hoursPerDay := c.hours.EndHour - c.hours.StartHour
		if hoursPerDay <= 0 {
			return time.Time{}, false
		}
		total := nextDays * hoursPerDay
		if c.step >= total {
			c.phase = phaseDone
			return time.Time{}, false
		}
		day := c.step/hoursPerDay + 1
		hour := c.hours.StartHour + c.step%hoursPerDay
		c.step++
		base := c.requested.AddDate(0, 0, day)
		candidate := time.Date(base.Year(), base.Month(), base.Day(), hour, 0, 0, 0, base.Location())
		return candidate, true

	default:
		return time.Time{}, false
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
