package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
)

// DB is the pgx surface the repository needs; satisfied by *pgxpool.Pool and
// by pgxmock in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for appointments.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool or compatible mock.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("appointments: db required")
	}
	return &Repository{db: db}
}

const appointmentColumns = `id, tenant_id, profile_id, phone, client_name, service,
	start_time, end_time, status, external_event_id, scheduler_type, notes, created_at, updated_at`

const insertQuery = `
INSERT INTO appointments (id, tenant_id, profile_id, phone, client_name, service,
	start_time, end_time, status, external_event_id, scheduler_type, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())`

// Insert stores a new appointment row.
func (r *Repository) Insert(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, insertQuery,
		a.ID, a.TenantID, a.ProfileID, a.Phone, a.ClientName, a.Service,
		a.StartTime, a.EndTime, string(a.Status), a.ExternalEventID, string(a.SchedulerType), a.Notes,
	)
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

const findNearQuery = `
SELECT ` + appointmentColumns + `
FROM appointments
WHERE tenant_id = $1 AND phone = $2 AND status = 'confirmed'
  AND start_time BETWEEN $3 AND $4
ORDER BY start_time
LIMIT 1`

// FindConfirmedNear returns a confirmed appointment for the tenant+phone whose
// start falls within the window around start, or nil when none exists.
func (r *Repository) FindConfirmedNear(ctx context.Context, tenantID, phone string, start time.Time, window time.Duration) (*Appointment, error) {
	row := r.db.QueryRow(ctx, findNearQuery, tenantID, phone, start.Add(-window), start.Add(window))
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: find confirmed near: %w", err)
	}
	return a, nil
}

const latestConfirmedQuery = `
SELECT ` + appointmentColumns + `
FROM appointments
WHERE tenant_id = $1 AND phone = $2 AND status = 'confirmed'
ORDER BY start_time DESC
LIMIT 1`

// LatestConfirmed returns the most recent confirmed appointment for the
// tenant+phone, or nil when none exists.
func (r *Repository) LatestConfirmed(ctx context.Context, tenantID, phone string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, latestConfirmedQuery, tenantID, phone)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: latest confirmed: %w", err)
	}
	return a, nil
}

const cancelQuery = `
UPDATE appointments
SET status = 'cancelled', updated_at = NOW()
WHERE id = $1 AND status = 'confirmed'`

// MarkCancelled flips a confirmed appointment to cancelled. Cancelling an
// already-cancelled row is an error: the transition is one-way.
func (r *Repository) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, cancelQuery, id)
	if err != nil {
		return fmt.Errorf("appointments: mark cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("appointments: mark cancelled: no confirmed appointment %s", id)
	}
	return nil
}

const listQuery = `
SELECT ` + appointmentColumns + `
FROM appointments
WHERE tenant_id = $1 AND ($2 = '' OR phone = $2)
ORDER BY start_time DESC
LIMIT $3`

// ListByTenant returns recent appointments for a tenant, optionally filtered
// by phone.
func (r *Repository) ListByTenant(ctx context.Context, tenantID, phone string, limit int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, listQuery, tenantID, phone, limit)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: list scan: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list rows: %w", err)
	}
	return out, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a             Appointment
		status        string
		schedulerType string
	)
	err := row.Scan(
		&a.ID, &a.TenantID, &a.ProfileID, &a.Phone, &a.ClientName, &a.Service,
		&a.StartTime, &a.EndTime, &status, &a.ExternalEventID, &schedulerType, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	a.SchedulerType = scheduling.SchedulerType(schedulerType)
	return &a, nil
}
