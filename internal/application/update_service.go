package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// defaultDebounce suppresses republishing when a publish for the same tenant
// completed this recently. Overlapping triggers collapse into one publish;
// the periodic maintainer picks up anything suppressed.
const defaultDebounce = 2 * time.Second

// SummaryBuilder is the document-construction dependency of the update path.
type SummaryBuilder interface {
	BuildSummary(ctx context.Context, tenantID string) (SummaryDocument, error)
}

// UpdateService regenerates and republishes tenant summaries. It satisfies
// SummaryRefresher for the write paths that want the published document kept
// in sync.
type UpdateService struct {
	builder   SummaryBuilder
	configs   ConfigStore
	publisher Publisher
	debounce  time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu            sync.Mutex
	lastPublished map[string]time.Time
}

// NewUpdateService wires dependencies for summary republishing. A debounce at
// or below zero falls back to the default.
func NewUpdateService(builder SummaryBuilder, configs ConfigStore, publisher Publisher, debounce time.Duration, now func() time.Time, logger *slog.Logger) *UpdateService {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if now == nil {
		now = time.Now
	}
	return &UpdateService{
		builder:       builder,
		configs:       configs,
		publisher:     publisher,
		debounce:      debounce,
		now:           now,
		logger:        defaultLogger(logger),
		lastPublished: make(map[string]time.Time),
	}
}

// Refresh rebuilds and republishes the tenant's summary. Tenants without
// schedule configuration are a silent no-op, as are calls landing inside the
// debounce window of a completed publish.
func (s *UpdateService) Refresh(ctx context.Context, tenantID string) error {
	if s == nil || s.builder == nil || s.configs == nil || s.publisher == nil {
		return fmt.Errorf("update dependencies not configured")
	}

	if s.recentlyPublished(tenantID) {
		return nil
	}

	config, err := s.configs.GetScheduleConfig(ctx, tenantID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("load schedule config: %w", err)
	}

	document, err := s.builder.BuildSummary(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}

	if err := s.publisher.PublishSummary(ctx, config, document); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}
	s.markPublished(tenantID)

	logger := serviceLogger(ctx, s.logger, "update", "refresh", "tenant_id", tenantID)
	logger.InfoContext(ctx, "summary published", "weeks", len(document.Weeks), "partial", document.Partial)
	return nil
}

func (s *UpdateService) recentlyPublished(tenantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastPublished[tenantID]
	return ok && s.now().Sub(last) < s.debounce
}

func (s *UpdateService) markPublished(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPublished[tenantID] = s.now()
}
