package scheduling

import (
	"sort"
	"time"
)

// DefaultMaxSlots bounds slot enumeration output size, not correctness.
const DefaultMaxSlots = 60

// ExpandBusy pads a busy interval by bufferMinutes on both sides. A zero
// buffer is a valid value and expands nothing.
func ExpandBusy(busy Interval, bufferMinutes int) Interval {
	if bufferMinutes <= 0 {
		return busy
	}
	pad := time.Duration(bufferMinutes) * time.Minute
	return Interval{Start: busy.Start.Add(-pad), End: busy.End.Add(pad)}
}

// SubtractBusy computes the free intervals inside [windowStart, windowEnd)
// after removing every busy interval expanded by bufferMinutes. The result is
// sorted by start, pairwise disjoint, and contains only positive-duration
// intervals.
func SubtractBusy(windowStart, windowEnd time.Time, busy []Interval, bufferMinutes int) []Interval {
	if !windowEnd.After(windowStart) {
		return nil
	}

	expanded := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if !b.End.After(b.Start) {
			continue
		}
		expanded = append(expanded, ExpandBusy(b, bufferMinutes))
	}
	sort.Slice(expanded, func(i, j int) bool {
		return expanded[i].Start.Before(expanded[j].Start)
	})

	free := []Interval{{Start: windowStart, End: windowEnd}}
	for _, b := range expanded {
		next := make([]Interval, 0, len(free)+1)
		for _, f := range free {
			if !f.Overlaps(b) {
				next = append(next, f)
				continue
			}
			// A busy block can split a free interval into up to two pieces.
			if b.Start.After(f.Start) {
				next = append(next, Interval{Start: f.Start, End: b.Start})
			}
			if b.End.Before(f.End) {
				next = append(next, Interval{Start: b.End, End: f.End})
			}
		}
		free = next
	}

	out := free[:0]
	for _, f := range free {
		if f.End.After(f.Start) {
			out = append(out, f)
		}
	}
	return out
}

// SplitIntoSlots enumerates candidate starts inside each free interval,
// stepping by durationMinutes from the interval start. Enumeration stops
// globally once maxSlots candidates have been produced; maxSlots <= 0 uses
// DefaultMaxSlots.
func SplitIntoSlots(free []Interval, durationMinutes, maxSlots int) []time.Time {
	if durationMinutes <= 0 {
		return nil
	}
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	step := time.Duration(durationMinutes) * time.Minute

	var slots []time.Time
	for _, f := range free {
		for cursor := f.Start; !cursor.Add(step).After(f.End); cursor = cursor.Add(step) {
			slots = append(slots, cursor)
			if len(slots) >= maxSlots {
				return slots
			}
		}
	}
	return slots
}

// SlotFree reports whether [start, start+duration) touches no busy interval
// once each is expanded by bufferMinutes on both sides.
func SlotFree(start time.Time, durationMinutes, bufferMinutes int, busy []Interval) bool {
	want := Interval{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}
	for _, b := range busy {
		if !b.End.After(b.Start) {
			continue
		}
		if ExpandBusy(b, bufferMinutes).Overlaps(want) {
			return false
		}
	}
	return true
}

// ValidateSlotParams rejects nonsense durations and buffers before they reach
// a provider. Durations over eight hours are treated as input mistakes.
func ValidateSlotParams(durationMinutes, bufferMinutes int) error {
	if durationMinutes <= 0 {
		return Errorf(ClassValidation, "validate", "duration must be positive, got %d", durationMinutes)
	}
	if durationMinutes > 8*60 {
		return Errorf(ClassValidation, "validate", "duration %d minutes exceeds 8h limit", durationMinutes)
	}
	if bufferMinutes < 0 {
		return Errorf(ClassValidation, "validate", "buffer must not be negative, got %d", bufferMinutes)
	}
	return nil
}
