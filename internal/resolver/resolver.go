// Package resolver searches for an alternate start time when the requested
// slot is occupied. The search is bounded by an attempt budget passed by the
// caller and aborts outright on credential failures.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// ErrNoAvailability means every candidate inside the budget was occupied.
var ErrNoAvailability = errors.New("resolver: no availability found")

// DefaultMaxAttempts caps slot probes per search.
const DefaultMaxAttempts = 20

// Budget bounds a single alternate-time search.
type Budget struct {
	MaxAttempts int
}

// SlotChecker is the slice of the provider contract the resolver needs.
type SlotChecker interface {
	IsSlotFree(ctx context.Context, start time.Time, durationMinutes, bufferMinutes int) (bool, error)
}

// Resolver probes alternate candidates against a scheduler provider.
type Resolver struct {
	hours  scheduling.BusinessHours
	logger *logging.Logger
	now    func() time.Time
}

// New creates a resolver bounded to the given business hours.
func New(hours scheduling.BusinessHours, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{hours: hours, logger: logger, now: time.Now}
}

// Resolve returns the first free alternate start for a rejected request.
//
// Failure modes are distinguished: ErrNoAvailability when the budget was
// spent on occupied slots, a classified provider error otherwise. An auth
// error aborts the whole search immediately instead of burning the remaining
// budget on calls that cannot succeed.
func (r *Resolver) Resolve(ctx context.Context, checker SlotChecker, requested time.Time, durationMinutes, bufferMinutes int, budget Budget) (time.Time, error) {
	if err := scheduling.ValidateSlotParams(durationMinutes, bufferMinutes); err != nil {
		return time.Time{}, err
	}
	maxAttempts := budget.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	candidates := NewCandidates(requested, r.now(), r.hours)
	var lastErr error
	attempts := 0

	for attempts < maxAttempts {
		candidate, ok := candidates.Next()
		if !ok {
			break
		}
		attempts++

		free, err := checker.IsSlotFree(ctx, candidate, durationMinutes, bufferMinutes)
		if err != nil {
			if scheduling.IsAuth(err) {
				r.logger.Warn("alternate search aborted on auth failure",
					"requested", requested.Format(time.RFC3339),
					"attempts", attempts,
				)
				return time.Time{}, err
			}
			lastErr = err
			continue
		}
		if free {
			r.logger.Info("alternate slot found",
				"requested", requested.Format(time.RFC3339),
				"alternate", candidate.Format(time.RFC3339),
				"attempts", attempts,
			)
			return candidate, nil
		}
	}

	if lastErr != nil {
		return time.Time{}, fmt.Errorf("resolver: search failed after %d attempts: %w", attempts, lastErr)
	}
	return time.Time{}, ErrNoAvailability
}
