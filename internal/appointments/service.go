package appointments

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/observability/metrics"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

var appointmentsTracer = otel.Tracer("agenda.internal.appointments")

// Store finalizes bookings: duplicate suppression, persistence, and the
// cancel command. Persistence is the last step after a successful external
// create; a failure here is re-thrown as a persistence-class error because
// the external event already exists.
type Store struct {
	repo      *Repository
	providers providerSource
	logger    *logging.Logger
	metrics   *metrics.BookingMetrics
}

// providerSource is the minimal slice of scheduler.Cache the store uses.
type providerSource interface {
	ProviderFor(ctx context.Context, tenantID string) (scheduler.Provider, error)
}

// NewStore constructs the appointment store.
func NewStore(repo *Repository, providers providerSource, m *metrics.BookingMetrics, logger *logging.Logger) *Store {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{repo: repo, providers: providers, logger: logger, metrics: m}
}

// Finalize persists a newly created appointment, cancelling any confirmed
// duplicate for the same tenant+phone within the dedup window first. The
// older duplicate is removed externally (best effort) and internally before
// the new row is written.
func (s *Store) Finalize(ctx context.Context, a *Appointment) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.finalize")
	defer span.End()
	span.SetAttributes(
		attribute.String("agenda.tenant_id", a.TenantID),
		attribute.String("agenda.phone", a.Phone),
	)

	if err := a.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	older, err := s.repo.FindConfirmedNear(ctx, a.TenantID, a.Phone, a.StartTime, DedupWindow)
	if err != nil {
		span.RecordError(err)
		// The external event already exists; a failed dedup lookup leaves it
		// untracked just like a failed insert would.
		return nil, scheduling.NewError(scheduling.ClassPersistence, "finalize_dedup_lookup", err)
	}
	if older != nil {
		s.cancelDuplicate(ctx, older)
	}

	if err := s.repo.Insert(ctx, a); err != nil {
		span.RecordError(err)
		s.logger.Error("appointment insert failed after external create; event is orphaned",
			"tenant_id", a.TenantID,
			"phone", a.Phone,
			"external_event_id", derefOr(a.ExternalEventID, ""),
			"scheduler_type", string(a.SchedulerType),
			"error", err,
		)
		return nil, scheduling.NewError(scheduling.ClassPersistence, "finalize_insert", err)
	}

	s.logger.Info("appointment confirmed",
		"tenant_id", a.TenantID,
		"appointment_id", a.ID,
		"start", a.StartTime.Format(time.RFC3339),
		"service", a.Service,
	)
	s.metrics.ObserveBooking("confirmed")
	return a, nil
}

// cancelDuplicate removes an older duplicate externally (best effort) and
// internally. An internal cancel failure is logged but does not block the new
// booking: the unique index on (external_event_id, tenant_id) still holds.
func (s *Store) cancelDuplicate(ctx context.Context, older *Appointment) {
	s.logger.Info("duplicate booking detected, cancelling older appointment",
		"tenant_id", older.TenantID,
		"appointment_id", older.ID,
		"start", older.StartTime.Format(time.RFC3339),
	)

	if older.ExternalEventID != nil && *older.ExternalEventID != "" && s.providers != nil {
		provider, err := s.providers.ProviderFor(ctx, older.TenantID)
		switch {
		case err != nil:
			s.logger.Warn("cannot resolve provider for duplicate cancel", "tenant_id", older.TenantID, "error", err)
		case provider.Type() != older.SchedulerType:
			s.logger.Warn("duplicate was booked on a different scheduler type, skipping external delete",
				"tenant_id", older.TenantID,
				"old_type", string(older.SchedulerType),
				"current_type", string(provider.Type()),
			)
		default:
			if err := provider.DeleteAppointment(ctx, *older.ExternalEventID); err != nil {
				s.metrics.ObserveProviderError(string(scheduling.ClassOf(err)))
				s.logger.Warn("external delete of duplicate failed",
					"tenant_id", older.TenantID,
					"external_event_id", *older.ExternalEventID,
					"error", err,
				)
			}
		}
	}

	if err := s.repo.MarkCancelled(ctx, older.ID); err != nil {
		s.logger.Error("internal cancel of duplicate failed", "appointment_id", older.ID, "error", err)
		return
	}
	s.metrics.ObserveDedupCancel()
}

// CancelLatest handles an explicit cancellation request for the tenant+phone:
// the most recent confirmed appointment is deleted externally and marked
// cancelled. Returns the cancelled appointment, or nil when there was none.
func (s *Store) CancelLatest(ctx context.Context, tenantID, phone string) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.cancel_latest")
	defer span.End()

	latest, err := s.repo.LatestConfirmed(ctx, tenantID, phone)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}

	if latest.ExternalEventID != nil && *latest.ExternalEventID != "" && s.providers != nil {
		provider, err := s.providers.ProviderFor(ctx, tenantID)
		if err == nil && provider.Type() == latest.SchedulerType {
			if err := provider.DeleteAppointment(ctx, *latest.ExternalEventID); err != nil {
				s.metrics.ObserveProviderError(string(scheduling.ClassOf(err)))
				s.logger.Warn("external delete failed during cancel",
					"tenant_id", tenantID,
					"external_event_id", *latest.ExternalEventID,
					"error", err,
				)
			}
		}
	}

	if err := s.repo.MarkCancelled(ctx, latest.ID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	latest.Status = StatusCancelled
	s.metrics.ObserveBooking("cancelled")
	s.logger.Info("appointment cancelled on request", "tenant_id", tenantID, "appointment_id", latest.ID)
	return latest, nil
}

// List exposes recent appointments for the admin surface.
func (s *Store) List(ctx context.Context, tenantID, phone string, limit int) ([]Appointment, error) {
	return s.repo.ListByTenant(ctx, tenantID, phone, limit)
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
