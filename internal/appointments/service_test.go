package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

type stubProvider struct {
	kind    scheduling.SchedulerType
	deleted []string
	delErr  error
}

func (p *stubProvider) Type() scheduling.SchedulerType { return p.kind }
func (p *stubProvider) GetBusy(context.Context, scheduling.Interval) ([]scheduling.Interval, error) {
	return nil, nil
}
func (p *stubProvider) GetAvailableSlots(context.Context, scheduling.Interval, int, int) ([]scheduling.Slot, error) {
	return nil, nil
}
func (p *stubProvider) IsSlotFree(context.Context, time.Time, int, int) (bool, error) {
	return true, nil
}
func (p *stubProvider) CreateAppointment(context.Context, scheduler.CreateRequest) (*scheduler.CreateResult, error) {
	return &scheduler.CreateResult{ExternalEventID: "evt"}, nil
}
func (p *stubProvider) DeleteAppointment(_ context.Context, id string) error {
	p.deleted = append(p.deleted, id)
	return p.delErr
}

type stubProviderSource struct{ provider *stubProvider }

func (s *stubProviderSource) ProviderFor(context.Context, string) (scheduler.Provider, error) {
	return s.provider, nil
}

func newStore(t *testing.T, provider *stubProvider) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	repo := NewRepository(mock)
	return NewStore(repo, &stubProviderSource{provider: provider}, nil, logging.Default()), mock
}

func confirmedAppointment(start time.Time) *Appointment {
	eventID := "evt-new"
	return &Appointment{
		TenantID:        "tenant-1",
		ProfileID:       "profile-1",
		Phone:           "+5511999990000",
		ClientName:      "Maria Silva",
		Service:         "Corte",
		StartTime:       start,
		EndTime:         start.Add(30 * time.Minute),
		Status:          StatusConfirmed,
		ExternalEventID: &eventID,
		SchedulerType:   scheduling.SchedulerGoogle,
	}
}

func TestFinalizeWithoutDuplicate(t *testing.T) {
	provider := &stubProvider{kind: scheduling.SchedulerGoogle}
	store, mock := newStore(t, provider)
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WillReturnRows(appointmentRows())
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	got, err := store.Finalize(context.Background(), confirmedAppointment(start))
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if got.ID == uuid.Nil {
		t.Fatal("finalized appointment should carry an id")
	}
	if len(provider.deleted) != 0 {
		t.Fatal("no external delete expected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFinalizeCancelsDuplicateWithinWindow(t *testing.T) {
	// Two bookings 20 minutes apart: the older one is cancelled externally
	// and internally, exactly one confirmed appointment remains.
	provider := &stubProvider{kind: scheduling.SchedulerGoogle}
	store, mock := newStore(t, provider)
	start := time.Date(2026, 3, 10, 10, 20, 0, 0, time.UTC)
	olderID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WillReturnRows(sampleRow(appointmentRows(), olderID, start.Add(-20*time.Minute)))
	mock.ExpectExec("UPDATE appointments").
		WithArgs(olderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if _, err := store.Finalize(context.Background(), confirmedAppointment(start)); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if len(provider.deleted) != 1 || provider.deleted[0] != "evt-1" {
		t.Fatalf("external deletes = %v, want [evt-1]", provider.deleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFinalizeExternalDeleteFailureIsBestEffort(t *testing.T) {
	provider := &stubProvider{
		kind:   scheduling.SchedulerGoogle,
		delErr: scheduling.Errorf(scheduling.ClassUnavailable, "delete_event", "502"),
	}
	store, mock := newStore(t, provider)
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	olderID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WillReturnRows(sampleRow(appointmentRows(), olderID, start.Add(30*time.Minute)))
	mock.ExpectExec("UPDATE appointments").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if _, err := store.Finalize(context.Background(), confirmedAppointment(start)); err != nil {
		t.Fatalf("external delete failure must not block the new booking: %v", err)
	}
}

func TestFinalizeInsertFailureIsPersistenceError(t *testing.T) {
	provider := &stubProvider{kind: scheduling.SchedulerGoogle}
	store, mock := newStore(t, provider)
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WillReturnRows(appointmentRows())
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnError(errors.New("connection reset"))

	_, err := store.Finalize(context.Background(), confirmedAppointment(start))
	if !scheduling.IsPersistence(err) {
		t.Fatalf("insert failure after external create must be persistence-class, got %v", err)
	}
}

func TestFinalizeRejectsConfirmedWithoutEventID(t *testing.T) {
	provider := &stubProvider{kind: scheduling.SchedulerGoogle}
	store, _ := newStore(t, provider)
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	a := confirmedAppointment(start)
	a.ExternalEventID = nil
	if _, err := store.Finalize(context.Background(), a); !scheduling.IsValidation(err) {
		t.Fatalf("confirmed without external id is an invariant violation, got %v", err)
	}
}

func TestCancelLatest(t *testing.T) {
	provider := &stubProvider{kind: scheduling.SchedulerGoogle}
	store, mock := newStore(t, provider)
	start := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs("tenant-1", "+5511999990000").
		WillReturnRows(sampleRow(appointmentRows(), id, start))
	mock.ExpectExec("UPDATE appointments").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	got, err := store.CancelLatest(context.Background(), "tenant-1", "+5511999990000")
	if err != nil {
		t.Fatalf("CancelLatest() error = %v", err)
	}
	if got == nil || got.Status != StatusCancelled {
		t.Fatalf("got = %+v, want cancelled appointment", got)
	}
	if len(provider.deleted) != 1 {
		t.Fatalf("external deletes = %v", provider.deleted)
	}
}

func TestCancelLatestNothingToCancel(t *testing.T) {
	provider := &stubProvider{kind: scheduling.SchedulerGoogle}
	store, mock := newStore(t, provider)

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WillReturnRows(appointmentRows())

	got, err := store.CancelLatest(context.Background(), "tenant-1", "+55")
	if err != nil || got != nil {
		t.Fatalf("got = %v, %v; want nil, nil", got, err)
	}
}
