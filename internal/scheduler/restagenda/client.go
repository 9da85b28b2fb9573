// Package restagenda implements the scheduler provider contract against a
// generic REST scheduling API authenticated with a bearer API key.
package restagenda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

const (
	defaultTimeout = 20 * time.Second

	// busyGridMinutes is the grid used to reconstruct busy intervals from the
	// slots endpoint; the API itself only exposes free slots.
	busyGridMinutes = 30
)

// Config carries the tenant's REST scheduler credentials.
type Config struct {
	BaseURL  string
	APIKey   string
	Timezone string
	Logger   *logging.Logger
}

// Client is the REST scheduler provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	loc        *time.Location
	logger     *logging.Logger
}

// New validates the tenant credentials and builds the client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, scheduling.Errorf(scheduling.ClassNotConfigured, "restagenda_new", "missing base url")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, scheduling.Errorf(scheduling.ClassNotConfigured, "restagenda_new", "missing api key")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	loc := time.UTC
	if cfg.Timezone != "" {
		if parsed, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = parsed
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		loc:        loc,
		logger:     logger,
	}, nil
}

// Type identifies this backend.
func (c *Client) Type() scheduling.SchedulerType { return scheduling.SchedulerAgendaAPI }

type apiSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type availableSlotsResponse struct {
	Slots []apiSlot `json:"slots"`
}

type checkAvailabilityResponse struct {
	Available bool `json:"available"`
}

type createAppointmentRequest struct {
	ClientName string `json:"clientName"`
	Phone      string `json:"phone"`
	Service    string `json:"service"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Notes      string `json:"notes,omitempty"`
}

type createAppointmentResponse struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// GetAvailableSlots queries the slots endpoint. The backend expresses the
// buffer as extra spacing between consecutive slots.
func (c *Client) GetAvailableSlots(ctx context.Context, window scheduling.Interval, durationMinutes, bufferMinutes int) ([]scheduling.Slot, error) {
	if err := scheduling.ValidateSlotParams(durationMinutes, bufferMinutes); err != nil {
		return nil, err
	}
	starts, err := c.fetchSlots(ctx, window, durationMinutes, durationMinutes+bufferMinutes)
	if err != nil {
		return nil, err
	}
	slots := make([]scheduling.Slot, 0, len(starts))
	for _, start := range starts {
		slots = append(slots, scheduling.NewSlot(start, c.loc))
		if len(slots) >= scheduling.DefaultMaxSlots {
			break
		}
	}
	return slots, nil
}

// IsSlotFree asks the check-availability endpoint about the exact start.
func (c *Client) IsSlotFree(ctx context.Context, start time.Time, durationMinutes, bufferMinutes int) (bool, error) {
	if err := scheduling.ValidateSlotParams(durationMinutes, bufferMinutes); err != nil {
		return false, err
	}
	query := url.Values{}
	query.Set("startTime", start.UTC().Format(time.RFC3339))
	query.Set("durationMinutes", strconv.Itoa(durationMinutes))
	query.Set("intervalMinutes", strconv.Itoa(durationMinutes+bufferMinutes))

	var out checkAvailabilityResponse
	if err := c.do(ctx, http.MethodGet, "/appointments/check-availability?"+query.Encode(), nil, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

// GetBusy reconstructs busy intervals from the slots endpoint on a 30 minute
// grid: any grid cell the API does not offer as a slot is considered busy.
func (c *Client) GetBusy(ctx context.Context, window scheduling.Interval) ([]scheduling.Interval, error) {
	starts, err := c.fetchSlots(ctx, window, busyGridMinutes, busyGridMinutes)
	if err != nil {
		return nil, err
	}
	freeSet := make(map[int64]struct{}, len(starts))
	for _, s := range starts {
		freeSet[s.Unix()] = struct{}{}
	}

	grid := time.Duration(busyGridMinutes) * time.Minute
	var busy []scheduling.Interval
	for cursor := window.Start; !cursor.Add(grid).After(window.End); cursor = cursor.Add(grid) {
		if _, free := freeSet[cursor.Unix()]; free {
			continue
		}
		cell := scheduling.Interval{Start: cursor, End: cursor.Add(grid)}
		if n := len(busy); n > 0 && busy[n-1].End.Equal(cell.Start) {
			busy[n-1].End = cell.End
			continue
		}
		busy = append(busy, cell)
	}
	return busy, nil
}

// CreateAppointment posts the booking.
func (c *Client) CreateAppointment(ctx context.Context, req scheduler.CreateRequest) (*scheduler.CreateResult, error) {
	if err := scheduling.ValidateSlotParams(req.DurationMinutes, 0); err != nil {
		return nil, err
	}
	payload := createAppointmentRequest{
		ClientName: req.ClientName,
		Phone:      req.Phone,
		Service:    req.Service,
		StartTime:  req.Start.UTC().Format(time.RFC3339),
		EndTime:    req.Start.Add(time.Duration(req.DurationMinutes) * time.Minute).UTC().Format(time.RFC3339),
		Notes:      req.Notes,
	}
	var out createAppointmentResponse
	if err := c.do(ctx, http.MethodPost, "/appointments", payload, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, scheduling.Errorf(scheduling.ClassUnavailable, "create_appointment", "api returned empty appointment id")
	}
	c.logger.Info("rest appointment created", "appointment_id", out.ID, "start", payload.StartTime)
	return &scheduler.CreateResult{ExternalEventID: out.ID, Link: out.Link}, nil
}

// DeleteAppointment cancels a booking by id.
func (c *Client) DeleteAppointment(ctx context.Context, externalEventID string) error {
	if strings.TrimSpace(externalEventID) == "" {
		return scheduling.Errorf(scheduling.ClassValidation, "delete_appointment", "empty external event id")
	}
	return c.do(ctx, http.MethodDelete, "/appointments/"+url.PathEscape(externalEventID), nil, nil)
}

func (c *Client) fetchSlots(ctx context.Context, window scheduling.Interval, durationMinutes, intervalMinutes int) ([]time.Time, error) {
	query := url.Values{}
	query.Set("from", window.Start.UTC().Format(time.RFC3339))
	query.Set("to", window.End.UTC().Format(time.RFC3339))
	query.Set("durationMinutes", strconv.Itoa(durationMinutes))
	query.Set("intervalMinutes", strconv.Itoa(intervalMinutes))

	var out availableSlotsResponse
	if err := c.do(ctx, http.MethodGet, "/appointments/available-slots?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	starts := make([]time.Time, 0, len(out.Slots))
	for _, s := range out.Slots {
		start, err := time.Parse(time.RFC3339, s.StartTime)
		if err != nil {
			continue
		}
		starts = append(starts, start)
	}
	return starts, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("restagenda: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("restagenda: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return scheduling.NewError(scheduling.ClassUnavailable, method+" "+path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return scheduling.NewError(scheduling.ClassUnavailable, method+" "+path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(method+" "+path, resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("restagenda: unmarshal response: %w", err)
		}
	}
	return nil
}

func classifyStatus(op string, status int, body []byte) error {
	msg := string(body)
	if len(msg) > 300 {
		msg = msg[:300]
	}
	err := fmt.Errorf("status %d: %s", status, msg)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return scheduling.NewError(scheduling.ClassAuth, op, err)
	case status == http.StatusConflict:
		return scheduling.NewError(scheduling.ClassConflict, op, err)
	case status >= 400 && status < 500:
		return scheduling.NewError(scheduling.ClassValidation, op, err)
	default:
		return scheduling.NewError(scheduling.ClassUnavailable, op, err)
	}
}
