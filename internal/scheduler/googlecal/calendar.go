// Package googlecal implements the scheduler provider contract on top of the
// Google Calendar API. Tenants connect their calendar through OAuth during
// onboarding; this package only consumes the stored tokens and writes back
// refreshed access tokens.
package googlecal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// TokenWriter persists refreshed access tokens back to tenant storage.
type TokenWriter interface {
	UpdateGoogleToken(ctx context.Context, tenantID, accessToken string, expiry time.Time) error
}

// Config carries the tenant credentials and calendar selection.
type Config struct {
	TenantID     string
	CalendarID   string
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	Timezone     string
	TokenWriter  TokenWriter
	Logger       *logging.Logger
}

// Calendar is the Google Calendar provider.
type Calendar struct {
	svc        *calendar.Service
	tenantID   string
	calendarID string
	timezone   string
	loc        *time.Location
	logger     *logging.Logger
}

// New builds the provider, wiring a token source that writes refreshed access
// tokens back through the TokenWriter.
func New(ctx context.Context, cfg Config) (*Calendar, error) {
	if cfg.RefreshToken == "" {
		return nil, scheduling.Errorf(scheduling.ClassNotConfigured, "googlecal_new", "tenant %s has no google refresh token", cfg.TenantID)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarEventsScope, calendar.CalendarReadonlyScope},
	}
	token := &oauth2.Token{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		Expiry:       cfg.TokenExpiry,
	}
	source := &persistingTokenSource{
		base:     oauth2.ReuseTokenSource(token, oauthCfg.TokenSource(ctx, token)),
		tenantID: cfg.TenantID,
		writer:   cfg.TokenWriter,
		last:     cfg.AccessToken,
		logger:   logger,
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("googlecal: build service: %w", err)
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	timezone := cfg.Timezone
	if timezone == "" {
		timezone = "America/Sao_Paulo"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	return &Calendar{
		svc:        svc,
		tenantID:   cfg.TenantID,
		calendarID: calendarID,
		timezone:   timezone,
		loc:        loc,
		logger:     logger,
	}, nil
}

// Type identifies this backend.
func (c *Calendar) Type() scheduling.SchedulerType { return scheduling.SchedulerGoogle }

// GetBusy queries free/busy for the window.
func (c *Calendar) GetBusy(ctx context.Context, window scheduling.Interval) ([]scheduling.Interval, error) {
	req := &calendar.FreeBusyRequest{
		TimeMin: window.Start.Format(time.RFC3339),
		TimeMax: window.End.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: c.calendarID}},
	}
	resp, err := c.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, classify("get_busy", err)
	}

	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return nil, scheduling.Errorf(scheduling.ClassUnavailable, "get_busy", "calendar %s missing from freebusy response", c.calendarID)
	}
	busy := make([]scheduling.Interval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			continue
		}
		busy = append(busy, scheduling.Interval{Start: start, End: end})
	}
	return busy, nil
}

// GetAvailableSlots computes open starts locally from the busy set.
func (c *Calendar) GetAvailableSlots(ctx context.Context, window scheduling.Interval, durationMinutes, bufferMinutes int) ([]scheduling.Slot, error) {
	if err := scheduling.ValidateSlotParams(durationMinutes, bufferMinutes); err != nil {
		return nil, err
	}
	busy, err := c.GetBusy(ctx, window)
	if err != nil {
		return nil, err
	}
	free := scheduling.SubtractBusy(window.Start, window.End, busy, bufferMinutes)
	starts := scheduling.SplitIntoSlots(free, durationMinutes, scheduling.DefaultMaxSlots)

	slots := make([]scheduling.Slot, 0, len(starts))
	for _, start := range starts {
		slots = append(slots, scheduling.NewSlot(start, c.loc))
	}
	return slots, nil
}

// IsSlotFree checks the requested slot against buffer-expanded busy periods.
func (c *Calendar) IsSlotFree(ctx context.Context, start time.Time, durationMinutes, bufferMinutes int) (bool, error) {
	if err := scheduling.ValidateSlotParams(durationMinutes, bufferMinutes); err != nil {
		return false, err
	}
	pad := time.Duration(bufferMinutes) * time.Minute
	window := scheduling.Interval{
		Start: start.Add(-pad),
		End:   start.Add(time.Duration(durationMinutes)*time.Minute + pad),
	}
	busy, err := c.GetBusy(ctx, window)
	if err != nil {
		return false, err
	}
	return scheduling.SlotFree(start, durationMinutes, bufferMinutes, busy), nil
}

// CreateAppointment inserts a calendar event for the booking.
func (c *Calendar) CreateAppointment(ctx context.Context, req scheduler.CreateRequest) (*scheduler.CreateResult, error) {
	end := req.Start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	event := &calendar.Event{
		Summary:     fmt.Sprintf("%s - %s", req.Service, req.ClientName),
		Description: buildDescription(req),
		Start: &calendar.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, classify("create_event", err)
	}
	c.logger.Info("google event created",
		"tenant_id", c.tenantID,
		"event_id", created.Id,
		"start", req.Start.Format(time.RFC3339),
	)
	return &scheduler.CreateResult{ExternalEventID: created.Id, Link: created.HtmlLink}, nil
}

// DeleteAppointment removes the event behind an external id.
func (c *Calendar) DeleteAppointment(ctx context.Context, externalEventID string) error {
	if externalEventID == "" {
		return scheduling.Errorf(scheduling.ClassValidation, "delete_event", "empty external event id")
	}
	if err := c.svc.Events.Delete(c.calendarID, externalEventID).Context(ctx).Do(); err != nil {
		var gerr *googleapi.Error
		// Deleting an already-gone event is not a failure.
		if errors.As(err, &gerr) && (gerr.Code == 404 || gerr.Code == 410) {
			return nil
		}
		return classify("delete_event", err)
	}
	return nil
}

func buildDescription(req scheduler.CreateRequest) string {
	desc := fmt.Sprintf("Cliente: %s\nTelefone: %s\nServiço: %s", req.ClientName, req.Phone, req.Service)
	if req.Notes != "" {
		desc += "\nObservações: " + req.Notes
	}
	return desc
}

// classify maps Google API failures onto the shared taxonomy.
func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == 401 || gerr.Code == 403:
			return scheduling.NewError(scheduling.ClassAuth, op, err)
		case gerr.Code == 409:
			return scheduling.NewError(scheduling.ClassConflict, op, err)
		case gerr.Code == 400 || gerr.Code == 404:
			return scheduling.NewError(scheduling.ClassValidation, op, err)
		default:
			return scheduling.NewError(scheduling.ClassUnavailable, op, err)
		}
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return scheduling.NewError(scheduling.ClassAuth, op, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return scheduling.NewError(scheduling.ClassUnavailable, op, err)
	}
	return scheduling.NewError(scheduling.ClassUnavailable, op, err)
}
