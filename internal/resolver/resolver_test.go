package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

var businessHours = scheduling.BusinessHours{StartHour: 9, EndHour: 20}

type scriptedChecker struct {
	free   map[int64]bool
	err    error
	errAt  int
	probes []time.Time
}

func (c *scriptedChecker) IsSlotFree(_ context.Context, start time.Time, _, _ int) (bool, error) {
	c.probes = append(c.probes, start)
	if c.err != nil && len(c.probes) >= c.errAt {
		return false, c.err
	}
	return c.free[start.Unix()], nil
}

func newResolver(t *testing.T, now time.Time) *Resolver {
	t.Helper()
	r := New(businessHours, logging.Default())
	r.now = func() time.Time { return now }
	return r
}

func TestResolveFirstAlternateIsThirtyMinutesLater(t *testing.T) {
	// Request at 10:00 against busy 10:00-10:30: first accepted alternate is 10:30.
	requested := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	alt := requested.Add(30 * time.Minute)

	checker := &scriptedChecker{free: map[int64]bool{alt.Unix(): true}}
	got, err := newResolver(t, now).Resolve(context.Background(), checker, requested, 30, 0, Budget{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !got.Equal(alt) {
		t.Fatalf("alternate = %v, want 10:30", got)
	}
	if len(checker.probes) != 1 {
		t.Fatalf("probes = %d, want 1", len(checker.probes))
	}
}

func TestResolveSkipsPastCandidates(t *testing.T) {
	// Requested 09:30 but it is already 10:45: backward candidates are in the
	// past and must never be probed.
	requested := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 10, 45, 0, 0, time.UTC)

	target := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	checker := &scriptedChecker{free: map[int64]bool{target.Unix(): true}}

	got, err := newResolver(t, now).Resolve(context.Background(), checker, requested, 30, 0, Budget{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !got.Equal(target) {
		t.Fatalf("alternate = %v, want 11:00", got)
	}
	for _, p := range checker.probes {
		if !p.After(now) {
			t.Fatalf("probed past candidate %v", p)
		}
	}
}

func TestResolveFallsToNextDays(t *testing.T) {
	// Everything on the requested day is occupied; the next-day 09:00 start
	// should be offered.
	requested := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	target := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	checker := &scriptedChecker{free: map[int64]bool{target.Unix(): true}}
	got, err := newResolver(t, now).Resolve(context.Background(), checker, requested, 30, 0, Budget{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !got.Equal(target) {
		t.Fatalf("alternate = %v, want next day 09:00", got)
	}
}

func TestResolveBudgetExhaustion(t *testing.T) {
	requested := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	checker := &scriptedChecker{free: map[int64]bool{}}
	_, err := newResolver(t, now).Resolve(context.Background(), checker, requested, 30, 0, Budget{MaxAttempts: 5})
	if !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("want ErrNoAvailability, got %v", err)
	}
	if len(checker.probes) != 5 {
		t.Fatalf("probes = %d, want budget 5", len(checker.probes))
	}
}

func TestResolveDefaultBudgetIsTwenty(t *testing.T) {
	requested := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	checker := &scriptedChecker{free: map[int64]bool{}}
	_, err := newResolver(t, now).Resolve(context.Background(), checker, requested, 30, 0, Budget{})
	if !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("want ErrNoAvailability, got %v", err)
	}
	if len(checker.probes) != DefaultMaxAttempts {
		t.Fatalf("probes = %d, want %d", len(checker.probes), DefaultMaxAttempts)
	}
}

func TestResolveAuthErrorAbortsImmediately(t *testing.T) {
	requested := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	authErr := scheduling.Errorf(scheduling.ClassAuth, "is_slot_free", "token expired")
	checker := &scriptedChecker{err: authErr, errAt: 2}
	_, err := newResolver(t, now).Resolve(context.Background(), checker, requested, 30, 0, Budget{})
	if !scheduling.IsAuth(err) {
		t.Fatalf("want auth error, got %v", err)
	}
	if len(checker.probes) != 2 {
		t.Fatalf("probes = %d, search must stop at the auth failure", len(checker.probes))
	}
}

func TestResolveTransientErrorsConsumeAttemptsButContinue(t *testing.T) {
	requested := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	transient := scheduling.Errorf(scheduling.ClassUnavailable, "is_slot_free", "502")
	checker := &scriptedChecker{err: transient, errAt: 1}
	_, err := newResolver(t, now).Resolve(context.Background(), checker, requested, 30, 0, Budget{MaxAttempts: 4})
	if err == nil || errors.Is(err, ErrNoAvailability) {
		t.Fatalf("want wrapped provider error, got %v", err)
	}
	if !scheduling.IsUnavailable(err) {
		t.Fatalf("provider error class lost: %v", err)
	}
	if len(checker.probes) != 4 {
		t.Fatalf("probes = %d, transient errors should keep consuming budget", len(checker.probes))
	}
}

func TestCandidatesRespectBusinessHours(t *testing.T) {
	// Requested at 19:00: +30m (19:30) is in hours, +60m (20:00) is not.
	requested := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	c := NewCandidates(requested, now, businessHours)

	first, ok := c.Next()
	if !ok || !first.Equal(requested.Add(30*time.Minute)) {
		t.Fatalf("first = %v,%v", first, ok)
	}
	second, ok := c.Next()
	if !ok {
		t.Fatal("expected more candidates")
	}
	if second.Hour() >= 20 {
		t.Fatalf("candidate %v outside business hours", second)
	}
}

func TestCandidatesNextDayOrder(t *testing.T) {
	requested := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	now := requested.Add(-time.Hour)
	c := NewCandidates(requested, now, businessHours)

	var all []time.Time
	for {
		cand, ok := c.Next()
		if !ok {
			break
		}
		all = append(all, cand)
	}
	// 12 forward + 4 backward - (past/backward none, all future) then 3 days x 11 hourly.
	// 10:00 requested: forward 10:30..16:00 all same day in hours = 12;
	// backward 09:30, 09:00 in hours = 2 (08:30, 08:00 outside hours).
	wantSameDay := 14
	for i, cand := range all[:wantSameDay] {
		if cand.Day() != 10 {
			t.Fatalf("candidate %d = %v, want same day", i, cand)
		}
	}
	if got := all[wantSameDay]; !got.Equal(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("first next-day candidate = %v, want 11th 09:00", got)
	}
	if total := len(all); total != wantSameDay+3*11 {
		t.Fatalf("total candidates = %d, want %d", total, wantSameDay+3*11)
	}
}
