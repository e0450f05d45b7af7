package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/rotation-scheduler/internal/persistence"
)

// ScheduleConfigRepository implements persistence.ScheduleConfigRepository
// using SQLite.
type ScheduleConfigRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewScheduleConfigRepository creates a new SQLite schedule config repository.
func NewScheduleConfigRepository(pool *ConnectionPool) *ScheduleConfigRepository {
	return &ScheduleConfigRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
	}
}

// GetScheduleConfig retrieves the summary configuration for a tenant.
func (r *ScheduleConfigRepository) GetScheduleConfig(ctx context.Context, tenantID string) (persistence.ScheduleConfig, error) {
	query := `
		SELECT tenant_id, summary_channel, summary_message, briefing_source, created_at, updated_at
		FROM schedule_configs
		WHERE tenant_id = ?
	`

	var config persistence.ScheduleConfig
	var createdAtStr, updatedAtStr string

	err := r.pool.DB().QueryRowContext(ctx, query, tenantID).Scan(
		&config.TenantID,
		&config.SummaryChannel,
		&config.SummaryMessage,
		&config.BriefingSource,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.ScheduleConfig{}, r.mapper.MapError(err)
	}

	if config.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.ScheduleConfig{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if config.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.ScheduleConfig{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return config, nil
}

// PutScheduleConfig inserts or replaces the tenant's summary configuration.
func (r *ScheduleConfigRepository) PutScheduleConfig(ctx context.Context, config persistence.ScheduleConfig) error {
	if config.TenantID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO schedule_configs (tenant_id, summary_channel, summary_message, briefing_source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id) DO UPDATE SET
			summary_channel = excluded.summary_channel,
			summary_message = excluded.summary_message,
			briefing_source = excluded.briefing_source,
			updated_at = excluded.updated_at
	`

	_, err := r.pool.DB().ExecContext(ctx, query,
		config.TenantID,
		config.SummaryChannel,
		config.SummaryMessage,
		config.BriefingSource,
		now,
		now,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}
