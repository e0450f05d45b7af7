package sqlite

import (
	"context"
	"fmt"
)

// Storage bundles the SQLite-backed repositories behind a single handle so
// callers can open, migrate, and close the database in one place.
type Storage struct {
	pool    *ConnectionPool
	Slots   *SlotRepository
	Configs *ScheduleConfigRepository
}

const schema = `
CREATE TABLE IF NOT EXISTS slots (
	id          TEXT PRIMARY KEY,
	tenant_id   TEXT NOT NULL,
	date        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	label       TEXT NOT NULL DEFAULT '',
	author_id   TEXT NOT NULL DEFAULT '',
	author_name TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	UNIQUE (tenant_id, date, kind)
);

CREATE INDEX IF NOT EXISTS idx_slots_tenant_date ON slots (tenant_id, date);

CREATE TABLE IF NOT EXISTS schedule_configs (
	tenant_id       TEXT PRIMARY KEY,
	summary_channel TEXT NOT NULL,
	summary_message TEXT NOT NULL,
	briefing_source TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);
`

// Open opens the SQLite database at the provided DSN and wires the
// repositories. Migrate must be called before first use.
func Open(dsn string) (*Storage, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}

	return &Storage{
		pool:    pool,
		Slots:   NewSlotRepository(pool),
		Configs: NewScheduleConfigRepository(pool),
	}, nil
}

// Migrate applies the schema. The statements are idempotent; the uniqueness
// of (tenant_id, date, kind) lives in the schema itself so the application
// never needs slot-level locking.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.pool.DB().ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Ping tests the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
