// Package bootstrap assembles the moving parts of the booking engine for
// the binaries in cmd/.
package bootstrap

import (
	"context"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler/configstore"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler/googlecal"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler/restagenda"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// ProviderFactory builds the concrete scheduler backend a tenant is
// configured for. OAuth client credentials are application-wide; tokens and
// API keys come from the tenant row.
type ProviderFactory struct {
	GoogleClientID     string
	GoogleClientSecret string
	Tokens             googlecal.TokenWriter
	Logger             *logging.Logger
}

// NewProviderFactory creates the factory used by the scheduler cache.
func NewProviderFactory(googleClientID, googleClientSecret string, tokens googlecal.TokenWriter, logger *logging.Logger) *ProviderFactory {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProviderFactory{
		GoogleClientID:     googleClientID,
		GoogleClientSecret: googleClientSecret,
		Tokens:             tokens,
		Logger:             logger,
	}
}

// Build returns the provider serving the tenant config.
func (f *ProviderFactory) Build(ctx context.Context, cfg *configstore.TenantSchedulerConfig) (scheduler.Provider, error) {
	switch cfg.SchedulerType {
	case scheduling.SchedulerGoogle:
		return googlecal.New(ctx, googlecal.Config{
			TenantID:     cfg.TenantID,
			CalendarID:   cfg.GoogleCalendarID,
			ClientID:     f.GoogleClientID,
			ClientSecret: f.GoogleClientSecret,
			AccessToken:  cfg.GoogleAccessToken,
			RefreshToken: cfg.GoogleRefreshToken,
			TokenExpiry:  cfg.GoogleTokenExpiry,
			Timezone:     cfg.Timezone,
			TokenWriter:  f.Tokens,
			Logger:       f.Logger,
		})
	case scheduling.SchedulerAgendaAPI:
		return restagenda.New(restagenda.Config{
			BaseURL:  cfg.AgendaAPIBaseURL,
			APIKey:   cfg.AgendaAPIKey,
			Timezone: cfg.Timezone,
			Logger:   f.Logger,
		})
	default:
		return nil, scheduling.Errorf(scheduling.ClassNotConfigured, "build_provider",
			"tenant %s has unsupported scheduler type %q", cfg.TenantID, cfg.SchedulerType)
	}
}
