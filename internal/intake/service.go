package intake

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/appointments"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/extract"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/notify"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/observability/metrics"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/resolver"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler/configstore"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// Inbound is one chat message entering the booking flow.
type Inbound struct {
	TenantID       string
	ProfileID      string
	Phone          string
	Text           string
	ServiceCatalog []string
	Profile        ProfileConfig
}

// Outcome is the flow's answer to one message. Handled=false means the
// message carried no booking intent and no session existed; the caller is
// free to route it elsewhere.
type Outcome struct {
	Handled        bool         `json:"handled"`
	Reply          string       `json:"reply,omitempty"`
	SuggestedSlots []StoredSlot `json:"suggested_slots,omitempty"`
}

// providerSource resolves the provider and config serving a tenant.
type providerSource interface {
	ProviderFor(ctx context.Context, tenantID string) (scheduler.Provider, *configstore.TenantSchedulerConfig, error)
}

// Options tunes the intake service; zero values fall back to defaults.
type Options struct {
	Hours             scheduling.BusinessHours
	MaxSuggestedSlots int
	DefaultDuration   int
	DefaultBuffer     int
	ResolveBudget     resolver.Budget
}

// Service is the conversational booking engine. One Handle call processes a
// message to completion, including any provider round trips; messages for
// the same tenant+phone are serialized by a per-key mutex.
type Service struct {
	sessions  SessionStore
	providers providerSource
	resolver  *resolver.Resolver
	store     *appointments.Store
	notifier  notify.Notifier
	parsers   extract.Set
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	tracer    trace.Tracer
	opts      Options
	locks     *keyedMutex
	now       func() time.Time
}

// NewService wires the booking flow together. sessions, providers, res and
// store are required; notifier may be nil (falls back to log-only).
func NewService(sessions SessionStore, providers providerSource, res *resolver.Resolver, store *appointments.Store, notifier notify.Notifier, m *metrics.BookingMetrics, logger *logging.Logger, opts Options) *Service {
	if sessions == nil {
		panic("intake: session store required")
	}
	if providers == nil {
		panic("intake: provider source required")
	}
	if res == nil {
		panic("intake: resolver required")
	}
	if store == nil {
		panic("intake: appointment store required")
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Hours == (scheduling.BusinessHours{}) {
		opts.Hours = scheduling.BusinessHours{StartHour: 9, EndHour: 20}
	}
	if opts.MaxSuggestedSlots <= 0 {
		opts.MaxSuggestedSlots = 3
	}
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = 30
	}
	return &Service{
		sessions:  sessions,
		providers: providers,
		resolver:  res,
		store:     store,
		notifier:  notifier,
		parsers:   extract.DefaultSet(),
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("agenda.internal.intake"),
		opts:      opts,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// Handle processes one inbound message and returns the reply, if any. The
// returned error is non-nil only for failures the caller must surface
// distinctly, notably a persistence failure after the external event was
// already created.
func (s *Service) Handle(ctx context.Context, in Inbound) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "intake.handle")
	defer span.End()
	span.SetAttributes(
		attribute.String("agenda.tenant_id", in.TenantID),
		attribute.String("agenda.profile_id", in.ProfileID),
	)

	if in.TenantID == "" || in.Phone == "" {
		return Outcome{}, scheduling.Errorf(scheduling.ClassValidation, "intake_handle", "tenant id and phone are required")
	}

	unlock := s.locks.Lock(in.TenantID + ":" + in.Phone)
	defer unlock()

	st, err := s.sessions.Get(ctx, in.TenantID, in.Phone)
	if err != nil {
		span.RecordError(err)
		return Outcome{}, fmt.Errorf("intake: session load: %w", err)
	}

	// Gate: without partial state, only booking intent opens the flow.
	if st == nil && !extract.HasBookingIntent(in.Text) {
		s.metrics.ObserveMessage("not_handled")
		return Outcome{Handled: false}, nil
	}

	if extract.IsCancelCommand(in.Text) {
		return s.handleCancel(ctx, in, st)
	}

	if st == nil {
		st = &State{Profile: in.Profile}
	}

	if st.AwaitingChoice {
		return s.handleChoice(ctx, in, st)
	}

	s.fillFields(in, st, s.tenantLocation(ctx, in.TenantID))

	if !st.Complete() {
		st.UpdatedAt = s.now()
		if err := s.sessions.Put(ctx, in.TenantID, in.Phone, st); err != nil {
			span.RecordError(err)
			return Outcome{}, fmt.Errorf("intake: session save: %w", err)
		}
		s.metrics.ObserveMessage("collecting")
		return Outcome{Handled: true, Reply: promptForField(st.NextMissing())}, nil
	}

	return s.attemptBooking(ctx, in, st, time.Time{})
}

// fillFields applies every parser whose field is still missing. A single
// message may fill several fields at once ("amanhã 14h" sets both date and
// time).
func (s *Service) fillFields(in Inbound, st *State, loc *time.Location) {
	if st.Service == "" {
		if svc, ok := s.parsers.Service.ParseService(in.Text, in.ServiceCatalog); ok {
			st.Service = svc
		}
	}
	if st.DateOnly == nil {
		if d, ok := s.parsers.Date.ParseDate(in.Text, s.now().In(loc), loc); ok {
			st.DateOnly = &d
		}
	}
	if st.Clock == nil {
		if c, ok := s.parsers.Time.ParseTime(in.Text); ok {
			st.Clock = &c
		}
	}
	// Name last: the stricter parsers above already claimed anything that
	// looks like a service, date or time.
	if st.Name == "" {
		if name, ok := s.parsers.Name.ParseName(in.Text); ok {
			st.Name = name
		}
	}
}

// handleCancel distinguishes the persisted-appointment cancel command
// ("cancelar agendamento") from a bare cancel that only resets the flow.
func (s *Service) handleCancel(ctx context.Context, in Inbound, st *State) (Outcome, error) {
	lower := strings.ToLower(in.Text)
	if strings.Contains(lower, "agendamento") || strings.Contains(lower, "desmarcar") {
		cancelled, err := s.store.CancelLatest(ctx, in.TenantID, in.Phone)
		if err != nil {
			s.logger.Error("cancel command failed", "tenant_id", in.TenantID, "error", err)
			s.metrics.ObserveMessage("error")
			return Outcome{Handled: true, Reply: replyUnable}, nil
		}
		if err := s.sessions.Delete(ctx, in.TenantID, in.Phone); err != nil {
			s.logger.Warn("session delete failed after cancel", "tenant_id", in.TenantID, "error", err)
		}
		s.metrics.ObserveMessage("cancelled")
		if cancelled == nil {
			return Outcome{Handled: true, Reply: replyNothingToCancel}, nil
		}
		return Outcome{Handled: true, Reply: replyCancelled}, nil
	}

	// Bare cancel resets the flow and never touches persisted appointments.
	if st != nil {
		if err := s.sessions.Delete(ctx, in.TenantID, in.Phone); err != nil {
			s.logger.Warn("session delete failed on reset", "tenant_id", in.TenantID, "error", err)
		}
	}
	s.metrics.ObserveMessage("reset")
	return Outcome{Handled: true, Reply: replyReset}, nil
}

// handleChoice accepts only a bare 1..n while suggestions are pending; any
// other input re-prompts without resetting state.
func (s *Service) handleChoice(ctx context.Context, in Inbound, st *State) (Outcome, error) {
	choice, err := strconv.Atoi(strings.TrimSpace(in.Text))
	if err != nil || choice < 1 || choice > len(st.SuggestedSlots) {
		s.metrics.ObserveMessage("choice_invalid")
		return Outcome{Handled: true, Reply: replyChoiceInvalid, SuggestedSlots: st.SuggestedSlots}, nil
	}

	picked := st.SuggestedSlots[choice-1]
	start, err := time.Parse(time.RFC3339, picked.StartISO)
	if err != nil {
		s.logger.Error("stored suggestion is unparseable, resetting choice state",
			"tenant_id", in.TenantID, "start_iso", picked.StartISO, "error", err)
		st.AwaitingChoice = false
		st.SuggestedSlots = nil
		st.Clock = nil
		st.DateOnly = nil
		if err := s.sessions.Put(ctx, in.TenantID, in.Phone, st); err != nil {
			return Outcome{}, fmt.Errorf("intake: session save: %w", err)
		}
		return Outcome{Handled: true, Reply: replyAskDate}, nil
	}

	// Availability was validated when the suggestions were generated; the
	// chosen slot is booked without another alternate search.
	return s.attemptBooking(ctx, in, st, start)
}

// attemptBooking runs the provider sequence for a complete state. chosen is
// non-zero when the start came from a previously suggested slot, which
// skips the free check and the alternate search.
func (s *Service) attemptBooking(ctx context.Context, in Inbound, st *State, chosen time.Time) (Outcome, error) {
	began := s.now()

	provider, cfg, err := s.providers.ProviderFor(ctx, in.TenantID)
	if err != nil {
		return s.providerFailure(ctx, in, st, "resolve_provider", err)
	}
	loc := cfg.Location()

	duration := st.Profile.ServiceDurationMinutes
	if duration <= 0 {
		duration = s.opts.DefaultDuration
	}
	buffer := st.Profile.BufferMinutes
	if buffer < 0 {
		buffer = s.opts.DefaultBuffer
	}
	if err := scheduling.ValidateSlotParams(duration, buffer); err != nil {
		s.metrics.ObserveMessage("error")
		return Outcome{Handled: true, Reply: replyAskTime}, nil
	}

	fromChoice := !chosen.IsZero()
	start := chosen
	if !fromChoice {
		start = st.StartTime(loc)
	}

	if start.Before(s.now()) {
		st.DateOnly = nil
		st.Clock = nil
		st.AwaitingChoice = false
		st.SuggestedSlots = nil
		if err := s.sessions.Put(ctx, in.TenantID, in.Phone, st); err != nil {
			return Outcome{}, fmt.Errorf("intake: session save: %w", err)
		}
		s.metrics.ObserveMessage("collecting")
		return Outcome{Handled: true, Reply: "Esse horário já passou. " + replyAskDate}, nil
	}

	if !fromChoice {
		free, err := provider.IsSlotFree(ctx, start, duration, buffer)
		if err != nil {
			return s.providerFailure(ctx, in, st, "is_slot_free", err)
		}
		if !free {
			return s.suggestAlternates(ctx, in, st, provider, start, duration, buffer, loc)
		}
	}

	result, err := provider.CreateAppointment(ctx, scheduler.CreateRequest{
		ClientName:      st.Name,
		Phone:           in.Phone,
		Service:         st.Service,
		Start:           start,
		DurationMinutes: duration,
	})
	if err != nil {
		if scheduling.IsConflict(err) && !fromChoice {
			// The slot was taken between the free check and the create.
			return s.suggestAlternates(ctx, in, st, provider, start, duration, buffer, loc)
		}
		return s.providerFailure(ctx, in, st, "create_appointment", err)
	}

	appt := &appointments.Appointment{
		TenantID:        in.TenantID,
		ProfileID:       in.ProfileID,
		Phone:           in.Phone,
		ClientName:      st.Name,
		Service:         st.Service,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(duration) * time.Minute),
		Status:          appointments.StatusConfirmed,
		ExternalEventID: &result.ExternalEventID,
		SchedulerType:   provider.Type(),
	}
	stored, err := s.store.Finalize(ctx, appt)
	if err != nil {
		// Persistence failed after the external event was created. This is
		// the one failure that must reach the caller unchanged.
		s.metrics.ObserveMessage("error")
		return Outcome{Handled: true}, err
	}

	slot := scheduling.NewSlot(start, loc)
	if err := s.notifier.AppointmentConfirmed(ctx, notify.Confirmation{
		TenantID:      in.TenantID,
		AppointmentID: stored.ID,
		Phone:         in.Phone,
		ClientName:    st.Name,
		Service:       st.Service,
		StartLocal:    slot.StartLocal,
	}); err != nil {
		s.logger.Warn("confirmation notification failed", "tenant_id", in.TenantID, "appointment_id", stored.ID, "error", err)
	}

	if err := s.sessions.Delete(ctx, in.TenantID, in.Phone); err != nil {
		s.logger.Warn("session delete failed after booking", "tenant_id", in.TenantID, "error", err)
	}

	s.metrics.ObserveMessage("booked")
	s.metrics.ObserveBookingLatency(s.now().Sub(began).Seconds())
	return Outcome{Handled: true, Reply: confirmationReply(st.Name, st.Service, slot.StartLocal)}, nil
}

// suggestAlternates runs the bounded alternate search and turns the result
// into a numbered suggestion list held on the session.
func (s *Service) suggestAlternates(ctx context.Context, in Inbound, st *State, provider scheduler.Provider, requested time.Time, duration, buffer int, loc *time.Location) (Outcome, error) {
	s.metrics.ObserveConflictResolved()

	alternate, err := s.resolver.Resolve(ctx, provider, requested, duration, buffer, s.opts.ResolveBudget)
	if err != nil {
		if err == resolver.ErrNoAvailability {
			st.DateOnly = nil
			st.Clock = nil
			if perr := s.sessions.Put(ctx, in.TenantID, in.Phone, st); perr != nil {
				return Outcome{}, fmt.Errorf("intake: session save: %w", perr)
			}
			s.metrics.ObserveMessage("no_availability")
			return Outcome{Handled: true, Reply: replyNoAvailability}, nil
		}
		return s.providerFailure(ctx, in, st, "resolve_alternate", err)
	}

	slots := s.slotsAround(ctx, provider, alternate, duration, buffer, loc)
	st.AwaitingChoice = true
	st.SuggestedSlots = slots
	st.UpdatedAt = s.now()
	if err := s.sessions.Put(ctx, in.TenantID, in.Phone, st); err != nil {
		return Outcome{}, fmt.Errorf("intake: session save: %w", err)
	}

	requestedLocal := scheduling.NewSlot(requested, loc).StartLocal
	s.metrics.ObserveMessage("suggested")
	return Outcome{
		Handled:        true,
		Reply:          suggestionsReply(requestedLocal, slots),
		SuggestedSlots: slots,
	}, nil
}

// slotsAround fetches open slots from the alternate to the end of the
// business day so the user gets a short numbered list rather than a single
// take-it-or-leave-it time. The resolved alternate is always present even
// when the wider query fails.
func (s *Service) slotsAround(ctx context.Context, provider scheduler.Provider, alternate time.Time, duration, buffer int, loc *time.Location) []StoredSlot {
	dayEnd := time.Date(alternate.Year(), alternate.Month(), alternate.Day(), s.opts.Hours.EndHour, 0, 0, 0, loc)
	if !dayEnd.After(alternate) {
		return []StoredSlot{slotOf(alternate, loc)}
	}

	open, err := provider.GetAvailableSlots(ctx, scheduling.Interval{Start: alternate, End: dayEnd}, duration, buffer)
	if err != nil || len(open) == 0 {
		if err != nil {
			s.logger.Warn("suggestion window query failed, falling back to single alternate", "error", err)
		}
		return []StoredSlot{slotOf(alternate, loc)}
	}
	return storedSlots(open, s.opts.MaxSuggestedSlots)
}

// providerFailure maps a classified provider error to the user-facing reply
// and decides whether the session survives. Auth failures need out-of-band
// reconnection; the session is kept so the user can retry later.
func (s *Service) providerFailure(ctx context.Context, in Inbound, st *State, op string, err error) (Outcome, error) {
	s.metrics.ObserveProviderError(string(scheduling.ClassOf(err)))
	s.logger.Error("provider call failed",
		"tenant_id", in.TenantID,
		"op", op,
		"class", string(scheduling.ClassOf(err)),
		"error", err,
	)

	st.UpdatedAt = s.now()
	if perr := s.sessions.Put(ctx, in.TenantID, in.Phone, st); perr != nil {
		s.logger.Warn("session save failed during provider error handling", "tenant_id", in.TenantID, "error", perr)
	}

	s.metrics.ObserveMessage("error")
	switch {
	case scheduling.IsAuth(err), scheduling.IsNotConfigured(err):
		return Outcome{Handled: true, Reply: replyReconnect}, nil
	case scheduling.IsValidation(err):
		return Outcome{Handled: true, Reply: replyAskTime}, nil
	default:
		return Outcome{Handled: true, Reply: replyUnable}, nil
	}
}

// tenantLocation resolves the tenant's timezone for date parsing. The
// provider cache makes repeated lookups cheap; on failure dates fall back to
// the process timezone and the error surfaces later in the booking attempt.
func (s *Service) tenantLocation(ctx context.Context, tenantID string) *time.Location {
	if _, cfg, err := s.providers.ProviderFor(ctx, tenantID); err == nil {
		return cfg.Location()
	}
	return time.Local
}

func slotOf(start time.Time, loc *time.Location) StoredSlot {
	s := scheduling.NewSlot(start, loc)
	return StoredSlot{StartISO: s.StartISO, StartLocal: s.StartLocal}
}
