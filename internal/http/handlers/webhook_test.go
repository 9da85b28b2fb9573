package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/appointments"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/intake"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/resolver"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler/configstore"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

type openProvider struct{}

func (openProvider) Type() scheduling.SchedulerType { return scheduling.SchedulerGoogle }
func (openProvider) GetBusy(context.Context, scheduling.Interval) ([]scheduling.Interval, error) {
	return nil, nil
}
func (openProvider) GetAvailableSlots(context.Context, scheduling.Interval, int, int) ([]scheduling.Slot, error) {
	return nil, nil
}
func (openProvider) IsSlotFree(context.Context, time.Time, int, int) (bool, error) {
	return true, nil
}
func (openProvider) CreateAppointment(context.Context, scheduler.CreateRequest) (*scheduler.CreateResult, error) {
	return &scheduler.CreateResult{ExternalEventID: "evt-1"}, nil
}
func (openProvider) DeleteAppointment(context.Context, string) error { return nil }

type staticSource struct{}

func (staticSource) ProviderFor(context.Context, string) (scheduler.Provider, *configstore.TenantSchedulerConfig, error) {
	return openProvider{}, &configstore.TenantSchedulerConfig{
		TenantID:      "tenant-1",
		SchedulerType: scheduling.SchedulerGoogle,
		Timezone:      "UTC",
	}, nil
}

type staticProviderOnly struct{}

func (staticProviderOnly) ProviderFor(context.Context, string) (scheduler.Provider, error) {
	return openProvider{}, nil
}

func newWebhookHandler(t *testing.T) *WebhookHandler {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)

	store := appointments.NewStore(appointments.NewRepository(mock), staticProviderOnly{}, nil, logging.Default())
	res := resolver.New(scheduling.BusinessHours{StartHour: 9, EndHour: 20}, logging.Default())
	svc := intake.NewService(
		intake.NewMemorySessionStore(time.Hour),
		staticSource{},
		res,
		store,
		nil,
		nil,
		logging.Default(),
		intake.Options{},
	)
	return NewWebhookHandler(svc, logging.Default())
}

func TestHandleMessageRejectsInvalidBody(t *testing.T) {
	h := newWebhookHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook/message", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleMessageRequiresIdentity(t *testing.T) {
	h := newWebhookHandler(t)

	body := `{"text": "quero agendar"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleMessagePassesThroughUnhandledChat(t *testing.T) {
	h := newWebhookHandler(t)

	body := `{"tenant_id": "tenant-1", "profile_id": "profile-1", "phone": "+5511999990000", "text": "Oi, tudo bem?"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp webhookResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Handled {
		t.Fatal("greeting should not be handled by the booking flow")
	}
}

func TestHandleMessageStartsIntake(t *testing.T) {
	h := newWebhookHandler(t)

	body := `{"tenant_id": "tenant-1", "profile_id": "profile-1", "phone": "+5511999990000", "text": "quero agendar um corte"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp webhookResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Handled {
		t.Fatal("booking intent should be handled")
	}
	if resp.Reply == "" {
		t.Fatal("expected a clarifying prompt")
	}
}
