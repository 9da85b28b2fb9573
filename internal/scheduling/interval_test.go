package scheduling

import (
	"testing"
	"time"
)

func at(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestSubtractBusy_SplitsAroundBusyBlock(t *testing.T) {
	free := SubtractBusy(
		at(t, 9, 0), at(t, 20, 0),
		[]Interval{{Start: at(t, 10, 0), End: at(t, 10, 30)}},
		0,
	)
	if len(free) != 2 {
		t.Fatalf("len(free) = %d, want 2", len(free))
	}
	if !free[0].Start.Equal(at(t, 9, 0)) || !free[0].End.Equal(at(t, 10, 0)) {
		t.Fatalf("first free = %v-%v", free[0].Start, free[0].End)
	}
	if !free[1].Start.Equal(at(t, 10, 30)) || !free[1].End.Equal(at(t, 20, 0)) {
		t.Fatalf("second free = %v-%v", free[1].Start, free[1].End)
	}
}

func TestSubtractBusy_ZeroBufferIsHonored(t *testing.T) {
	// buffer=0 must not be confused with "no buffer requested".
	busy := []Interval{{Start: at(t, 12, 0), End: at(t, 13, 0)}}
	free := SubtractBusy(at(t, 9, 0), at(t, 20, 0), busy, 0)
	for _, f := range free {
		if f.Overlaps(busy[0]) {
			t.Fatalf("free interval %v-%v overlaps busy", f.Start, f.End)
		}
	}
	// Exactly adjacent edges stay free.
	if !free[0].End.Equal(at(t, 12, 0)) {
		t.Fatalf("free should end exactly at busy start, got %v", free[0].End)
	}
}

func TestSubtractBusy_BufferExpandsBothSides(t *testing.T) {
	busy := []Interval{{Start: at(t, 12, 0), End: at(t, 13, 0)}}
	free := SubtractBusy(at(t, 9, 0), at(t, 20, 0), busy, 15)
	if len(free) != 2 {
		t.Fatalf("len(free) = %d, want 2", len(free))
	}
	if !free[0].End.Equal(at(t, 11, 45)) {
		t.Fatalf("free[0].End = %v, want 11:45", free[0].End)
	}
	if !free[1].Start.Equal(at(t, 13, 15)) {
		t.Fatalf("free[1].Start = %v, want 13:15", free[1].Start)
	}
}

func TestSubtractBusy_OutputDisjointAndSorted(t *testing.T) {
	busy := []Interval{
		{Start: at(t, 15, 0), End: at(t, 16, 0)},
		{Start: at(t, 10, 0), End: at(t, 11, 0)},
		{Start: at(t, 10, 30), End: at(t, 11, 30)}, // overlaps previous
		{Start: at(t, 8, 0), End: at(t, 9, 30)},    // clips window start
	}
	free := SubtractBusy(at(t, 9, 0), at(t, 20, 0), busy, 0)
	for i, f := range free {
		if !f.End.After(f.Start) {
			t.Fatalf("interval %d not positive: %v-%v", i, f.Start, f.End)
		}
		if i > 0 && free[i-1].End.After(f.Start) {
			t.Fatalf("intervals %d and %d overlap or unsorted", i-1, i)
		}
	}
	// Union check: total free time = 11h window minus 9:30-11:30 and 15:00-16:00.
	var total time.Duration
	for _, f := range free {
		total += f.Duration()
	}
	if want := 8 * time.Hour; total != want {
		t.Fatalf("total free = %v, want %v", total, want)
	}
}

func TestSubtractBusy_BusyCoversWindow(t *testing.T) {
	busy := []Interval{{Start: at(t, 8, 0), End: at(t, 21, 0)}}
	if free := SubtractBusy(at(t, 9, 0), at(t, 20, 0), busy, 0); len(free) != 0 {
		t.Fatalf("expected no free intervals, got %d", len(free))
	}
}

func TestSubtractBusy_IgnoresInvertedBusy(t *testing.T) {
	busy := []Interval{{Start: at(t, 12, 0), End: at(t, 11, 0)}}
	free := SubtractBusy(at(t, 9, 0), at(t, 20, 0), busy, 0)
	if len(free) != 1 || !free[0].Start.Equal(at(t, 9, 0)) || !free[0].End.Equal(at(t, 20, 0)) {
		t.Fatalf("inverted busy should be ignored, got %v", free)
	}
}

func TestSplitIntoSlots_ScenarioNineToEight(t *testing.T) {
	// Window 09:00-20:00, busy 10:00-10:30, buffer 0, duration 30:
	// slots include 09:00, 09:30, 10:30 ... 19:30 and exclude 10:00.
	free := SubtractBusy(
		at(t, 9, 0), at(t, 20, 0),
		[]Interval{{Start: at(t, 10, 0), End: at(t, 10, 30)}},
		0,
	)
	slots := SplitIntoSlots(free, 30, 0)

	want := []time.Time{at(t, 9, 0), at(t, 9, 30), at(t, 10, 30)}
	for _, w := range want {
		if !containsTime(slots, w) {
			t.Fatalf("slots missing %v", w)
		}
	}
	if containsTime(slots, at(t, 10, 0)) {
		t.Fatal("slots must not contain 10:00")
	}
	if !containsTime(slots, at(t, 19, 30)) {
		t.Fatal("slots missing 19:30")
	}
	if containsTime(slots, at(t, 20, 0)) {
		t.Fatal("slot at window end would overrun")
	}
}

func TestSplitIntoSlots_ConsecutiveSpacingAndFit(t *testing.T) {
	free := []Interval{{Start: at(t, 9, 0), End: at(t, 10, 45)}}
	slots := SplitIntoSlots(free, 30, 0)
	if len(slots) != 3 {
		t.Fatalf("len(slots) = %d, want 3", len(slots))
	}
	for i, s := range slots {
		if s.Add(30 * time.Minute).After(free[0].End) {
			t.Fatalf("slot %v overruns interval end", s)
		}
		if i > 0 && slots[i].Sub(slots[i-1]) != 30*time.Minute {
			t.Fatalf("slots %d,%d spaced %v", i-1, i, slots[i].Sub(slots[i-1]))
		}
	}
}

func TestSplitIntoSlots_GlobalCap(t *testing.T) {
	free := []Interval{{Start: at(t, 0, 0), End: at(t, 23, 0)}}
	slots := SplitIntoSlots(free, 5, 10)
	if len(slots) != 10 {
		t.Fatalf("len(slots) = %d, want capped 10", len(slots))
	}
}

func TestSlotFree(t *testing.T) {
	busy := []Interval{{Start: at(t, 10, 0), End: at(t, 10, 30)}}
	if SlotFree(at(t, 10, 0), 30, 0, busy) {
		t.Fatal("10:00 should be occupied")
	}
	if !SlotFree(at(t, 10, 30), 30, 0, busy) {
		t.Fatal("10:30 should be free")
	}
	if !SlotFree(at(t, 9, 30), 30, 0, busy) {
		t.Fatal("09:30 should be free (half-open ranges)")
	}
	// With a 15 minute buffer the adjacent slots become occupied too.
	if SlotFree(at(t, 10, 30), 30, 15, busy) {
		t.Fatal("10:30 should be blocked by buffer")
	}
	if SlotFree(at(t, 9, 30), 30, 15, busy) {
		t.Fatal("09:30 should be blocked by buffer")
	}
}

func TestValidateSlotParams(t *testing.T) {
	if err := ValidateSlotParams(30, 0); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	if err := ValidateSlotParams(0, 0); !IsValidation(err) {
		t.Fatalf("zero duration should be a validation error, got %v", err)
	}
	if err := ValidateSlotParams(9*60, 0); !IsValidation(err) {
		t.Fatalf("9h duration should be a validation error, got %v", err)
	}
	if err := ValidateSlotParams(30, -1); !IsValidation(err) {
		t.Fatalf("negative buffer should be a validation error, got %v", err)
	}
}

func containsTime(list []time.Time, want time.Time) bool {
	for _, s := range list {
		if s.Equal(want) {
			return true
		}
	}
	return false
}
