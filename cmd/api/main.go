package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/app/bootstrap"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/appointments"
	appconfig "github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/config"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/http/handlers"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/http/router"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/intake"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/notify"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/observability/metrics"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/resolver"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduler/configstore"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open config db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	// Scheduler provider selection, cached per tenant.
	configStore := configstore.New(sqlDB)
	factory := bootstrap.NewProviderFactory(cfg.GoogleClientID, cfg.GoogleClientSecret, configStore, logger)
	providerCache := scheduler.NewCache(configStore, factory, cfg.SchedulerCacheTTL, logger)

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	repo := appointments.NewRepository(pool)
	store := appointments.NewStore(repo, scheduler.ProviderOnly{Cache: providerCache}, bookingMetrics, logger)

	var notifier notify.Notifier
	if email := notify.NewEmailNotifier(notify.EmailConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, func(context.Context, string) (string, error) {
		return cfg.NotificationEmail, nil
	}, logger); email != nil {
		notifier = email
	}

	hours := scheduling.BusinessHours{StartHour: cfg.BusinessHourStart, EndHour: cfg.BusinessHourEnd}
	alternates := resolver.New(hours, logger)
	sessions := intake.NewRedisSessionStore(redisClient, cfg.SessionTTL)

	bookingFlow := intake.NewService(sessions, providerCache, alternates, store, notifier, bookingMetrics, logger, intake.Options{
		Hours:             hours,
		MaxSuggestedSlots: cfg.MaxSuggestedSlots,
		DefaultDuration:   cfg.DefaultDurationMinutes,
		DefaultBuffer:     cfg.DefaultBufferMinutes,
	})

	r := router.New(&router.Config{
		Logger:            logger,
		Webhook:           handlers.NewWebhookHandler(bookingFlow, logger),
		AdminAppointments: handlers.NewAdminAppointmentsHandler(store, logger),
		AdminAuthSecret:   cfg.AdminJWTSecret,
		MetricsHandler:    promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
