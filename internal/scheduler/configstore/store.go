// Package configstore loads each tenant's scheduler selection and credentials
// from PostgreSQL. The rows are written by the onboarding surface, which is
// outside this codebase; here they are read-only except for the Google access
// token refresh write-back.
package configstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
)

// TenantSchedulerConfig selects and configures a tenant's backend.
type TenantSchedulerConfig struct {
	TenantID      string
	SchedulerType scheduling.SchedulerType
	Timezone      string

	// Google Calendar backend
	GoogleCalendarID   string
	GoogleAccessToken  string
	GoogleRefreshToken string
	GoogleTokenExpiry  time.Time

	// REST scheduler backend
	AgendaAPIBaseURL string
	AgendaAPIKey     string

	UpdatedAt time.Time
}

// Location resolves the tenant timezone, falling back to UTC.
func (c *TenantSchedulerConfig) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Store reads tenant scheduler configs from PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a config store backed by database/sql.
func New(db *sql.DB) *Store {
	if db == nil {
		panic("configstore: db required")
	}
	return &Store{db: db}
}

const getQuery = `
SELECT tenant_id, scheduler_type, timezone,
       google_calendar_id, google_access_token, google_refresh_token, google_token_expiry,
       agenda_api_base_url, agenda_api_key,
       updated_at
FROM tenant_scheduler_configs
WHERE tenant_id = $1`

// Get loads the scheduler config for a tenant. A missing row or an unknown
// scheduler type is reported as a not-configured condition.
func (s *Store) Get(ctx context.Context, tenantID string) (*TenantSchedulerConfig, error) {
	var (
		cfg         TenantSchedulerConfig
		schedType   string
		timezone    sql.NullString
		calendarID  sql.NullString
		accessTok   sql.NullString
		refreshTok  sql.NullString
		tokenExpiry sql.NullTime
		baseURL     sql.NullString
		apiKey      sql.NullString
	)
	err := s.db.QueryRowContext(ctx, getQuery, tenantID).Scan(
		&cfg.TenantID, &schedType, &timezone,
		&calendarID, &accessTok, &refreshTok, &tokenExpiry,
		&baseURL, &apiKey,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scheduling.Errorf(scheduling.ClassNotConfigured, "config_get", "tenant %s has no scheduler config", tenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("configstore: load tenant %s: %w", tenantID, err)
	}

	cfg.SchedulerType = scheduling.SchedulerType(schedType)
	if !cfg.SchedulerType.Valid() {
		return nil, scheduling.Errorf(scheduling.ClassNotConfigured, "config_get", "tenant %s has unknown scheduler type %q", tenantID, schedType)
	}
	cfg.Timezone = timezone.String
	cfg.GoogleCalendarID = calendarID.String
	cfg.GoogleAccessToken = accessTok.String
	cfg.GoogleRefreshToken = refreshTok.String
	if tokenExpiry.Valid {
		cfg.GoogleTokenExpiry = tokenExpiry.Time
	}
	cfg.AgendaAPIBaseURL = baseURL.String
	cfg.AgendaAPIKey = apiKey.String
	return &cfg, nil
}

const updateTokenQuery = `
UPDATE tenant_scheduler_configs
SET google_access_token = $2, google_token_expiry = $3, updated_at = NOW()
WHERE tenant_id = $1`

// UpdateGoogleToken persists a refreshed access token so the next process
// start does not need another refresh round-trip.
func (s *Store) UpdateGoogleToken(ctx context.Context, tenantID, accessToken string, expiry time.Time) error {
	res, err := s.db.ExecContext(ctx, updateTokenQuery, tenantID, accessToken, expiry)
	if err != nil {
		return fmt.Errorf("configstore: update google token for %s: %w", tenantID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("configstore: update google token: tenant %s not found", tenantID)
	}
	return nil
}
