package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/rotation-scheduler/internal/application"
	"github.com/example/rotation-scheduler/internal/config"
	httptransport "github.com/example/rotation-scheduler/internal/http"
	"github.com/example/rotation-scheduler/internal/matching"
	"github.com/example/rotation-scheduler/internal/persistence"
	"github.com/example/rotation-scheduler/internal/persistence/sqlite"
	"github.com/example/rotation-scheduler/internal/recurrence"
	"github.com/example/rotation-scheduler/internal/titles"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	patterns, err := loadPatterns(cfg.PatternFile)
	if err != nil {
		logger.Error("failed to load recurrence patterns", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	slotStore := newSlotStoreAdapter(storage.Slots)
	configStore := newConfigStoreAdapter(storage.Configs)

	var titleSource application.TitleSource
	if cfg.TitleSourceURL != "" {
		client, err := titles.NewClient(cfg.TitleSourceURL, nil)
		if err != nil {
			logger.Error("failed to create title source client", "error", err)
			os.Exit(1)
		}
		titleSource = client
	}

	matcher := matching.NewMatcher(matching.DefaultConfig())
	summaryService := application.NewSummaryService(slotStore, configStore, titleSource, matcher, cfg.MatchDeadline, cfg.ReferenceZone, now, logger)
	updateService := application.NewUpdateService(summaryService, configStore, newLogPublisher(logger), cfg.PublishDebounce, now, logger)
	slotService := application.NewSlotService(slotStore, updateService, now, logger)
	maintenanceService := application.NewMaintenanceService(slotStore, patterns, cfg.PastWeeks, cfg.FutureWeeks, updateService, idGenerator, now, logger)

	// Populate immediately, then keep the window covered on the interval.
	for _, tenantID := range cfg.Tenants {
		if _, err := maintenanceService.EnsureCoverage(ctx, tenantID, 0, 0); err != nil {
			logger.Error("initial coverage pass failed", "tenant_id", tenantID, "error", err)
		}
	}

	scheduler := cron.New()
	scheduler.Schedule(cron.Every(cfg.MaintenanceInterval), cron.FuncJob(func() {
		maintenanceService.Maintain(ctx, cfg.Tenants)
	}))
	scheduler.Start()
	defer scheduler.Stop()

	slotHandler := httptransport.NewSlotHandler(slotService, logger)
	maintenanceHandler := httptransport.NewMaintenanceHandler(maintenanceService, logger)
	summaryHandler := httptransport.NewSummaryHandler(summaryService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Slots:           slotHandler,
		Maintenance:     maintenanceHandler,
		Summaries:       summaryHandler,
		AdminMiddleware: httptransport.RequireAdminToken(cfg.AdminTokenHash, logger),
		Middleware:      []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("rotation API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func loadPatterns(path string) (recurrence.PatternSet, error) {
	if path == "" {
		return recurrence.DefaultPatterns(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file %s: %w", path, err)
	}
	return recurrence.ParsePatternsYAML(data)
}

// logPublisher records the publish step. The real external edit/post is a
// collaborator outside this process; the API serves the built document.
type logPublisher struct {
	logger *slog.Logger
}

func newLogPublisher(logger *slog.Logger) *logPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &logPublisher{logger: logger}
}

func (p *logPublisher) PublishSummary(ctx context.Context, config application.ScheduleConfig, document application.SummaryDocument) error {
	p.logger.InfoContext(ctx, "summary ready for publishing",
		"tenant_id", document.TenantID,
		"summary_channel", config.SummaryChannel,
		"summary_message", config.SummaryMessage,
		"weeks", len(document.Weeks),
		"partial", document.Partial)
	return nil
}

type slotStoreAdapter struct {
	repo persistence.SlotRepository
}

func newSlotStoreAdapter(repo persistence.SlotRepository) *slotStoreAdapter {
	return &slotStoreAdapter{repo: repo}
}

func (a *slotStoreAdapter) UpsertIfAbsent(ctx context.Context, slot application.Slot) (bool, error) {
	inserted, err := a.repo.UpsertIfAbsent(ctx, toPersistenceSlot(slot))
	return inserted, mapStoreError(err)
}

func (a *slotStoreAdapter) Get(ctx context.Context, tenantID string, date time.Time, kind recurrence.Kind) (application.Slot, error) {
	stored, err := a.repo.Get(ctx, tenantID, date, string(kind))
	if err != nil {
		return application.Slot{}, mapStoreError(err)
	}
	return toApplicationSlot(stored), nil
}

func (a *slotStoreAdapter) SetLabel(ctx context.Context, tenantID string, date time.Time, kind recurrence.Kind, label, authorID, authorName string) (application.Slot, error) {
	stored, err := a.repo.SetLabel(ctx, tenantID, date, string(kind), label, authorID, authorName)
	if err != nil {
		return application.Slot{}, mapStoreError(err)
	}
	return toApplicationSlot(stored), nil
}

func (a *slotStoreAdapter) QueryRange(ctx context.Context, tenantID string, from, to time.Time) ([]application.Slot, error) {
	models, err := a.repo.QueryRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	slots := make([]application.Slot, 0, len(models))
	for _, model := range models {
		slots = append(slots, toApplicationSlot(model))
	}
	return slots, nil
}

type configStoreAdapter struct {
	repo persistence.ScheduleConfigRepository
}

func newConfigStoreAdapter(repo persistence.ScheduleConfigRepository) *configStoreAdapter {
	return &configStoreAdapter{repo: repo}
}

func (a *configStoreAdapter) GetScheduleConfig(ctx context.Context, tenantID string) (application.ScheduleConfig, error) {
	stored, err := a.repo.GetScheduleConfig(ctx, tenantID)
	if err != nil {
		return application.ScheduleConfig{}, mapStoreError(err)
	}
	return application.ScheduleConfig{
		TenantID:       stored.TenantID,
		SummaryChannel: stored.SummaryChannel,
		SummaryMessage: stored.SummaryMessage,
		BriefingSource: stored.BriefingSource,
	}, nil
}

func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%w: %w", application.ErrNotFound, err)
	}
	return err
}

func toPersistenceSlot(slot application.Slot) persistence.Slot {
	return persistence.Slot{
		ID:         slot.ID,
		TenantID:   slot.TenantID,
		Date:       slot.Date,
		Kind:       string(slot.Kind),
		Label:      slot.Label,
		AuthorID:   slot.AuthorID,
		AuthorName: slot.AuthorName,
		CreatedAt:  slot.CreatedAt,
		UpdatedAt:  slot.UpdatedAt,
	}
}

func toApplicationSlot(slot persistence.Slot) application.Slot {
	return application.Slot{
		ID:         slot.ID,
		TenantID:   slot.TenantID,
		Date:       slot.Date,
		Kind:       recurrence.Kind(slot.Kind),
		Label:      slot.Label,
		AuthorID:   slot.AuthorID,
		AuthorName: slot.AuthorName,
		CreatedAt:  slot.CreatedAt,
		UpdatedAt:  slot.UpdatedAt,
	}
}
