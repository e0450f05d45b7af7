package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/rotation-scheduler/internal/persistence"
)

// dateLayout is the canonical storage format for slot dates. Slots carry no
// time component.
const dateLayout = "2006-01-02"

// SlotRepository implements persistence.SlotRepository using SQLite.
type SlotRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewSlotRepository creates a new SQLite slot repository.
func NewSlotRepository(pool *ConnectionPool) *SlotRepository {
	return &SlotRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
	}
}

// UpsertIfAbsent inserts the slot unless its (tenant, date, kind) key already
// exists. The unique index resolves races natively: a concurrent duplicate
// insert is reported as "not inserted", never as an error.
func (r *SlotRepository) UpsertIfAbsent(ctx context.Context, slot persistence.Slot) (bool, error) {
	if slot.ID == "" || slot.TenantID == "" || slot.Kind == "" {
		return false, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	if slot.UpdatedAt.IsZero() {
		slot.UpdatedAt = now
	}

	query := `
		INSERT INTO slots (id, tenant_id, date, kind, label, author_id, author_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, date, kind) DO NOTHING
	`

	result, err := r.pool.DB().ExecContext(ctx, query,
		slot.ID,
		slot.TenantID,
		slot.Date.UTC().Format(dateLayout),
		slot.Kind,
		slot.Label,
		slot.AuthorID,
		slot.AuthorName,
		slot.CreatedAt.Format(time.RFC3339),
		slot.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		mapped := r.mapper.MapError(err)
		if errors.Is(mapped, persistence.ErrDuplicate) {
			return false, nil
		}
		return false, mapped
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return inserted > 0, nil
}

// Get retrieves the slot for the exact (tenant, date, kind) key.
func (r *SlotRepository) Get(ctx context.Context, tenantID string, date time.Time, kind string) (persistence.Slot, error) {
	query := `
		SELECT id, tenant_id, date, kind, label, author_id, author_name, created_at, updated_at
		FROM slots
		WHERE tenant_id = ? AND date = ? AND kind = ?
	`

	row := r.pool.DB().QueryRowContext(ctx, query, tenantID, date.UTC().Format(dateLayout), kind)
	slot, err := scanSlot(row)
	if err != nil {
		return persistence.Slot{}, r.mapper.MapError(err)
	}
	return slot, nil
}

// SetLabel updates the editable fields of an existing slot. Slots are never
// created here; a missing key is ErrNotFound.
func (r *SlotRepository) SetLabel(ctx context.Context, tenantID string, date time.Time, kind, label, authorID, authorName string) (persistence.Slot, error) {
	var updated persistence.Slot

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE slots
			SET label = ?, author_id = ?, author_name = ?, updated_at = ?
			WHERE tenant_id = ? AND date = ? AND kind = ?
		`

		result, err := tx.Exec(query,
			label,
			authorID,
			authorName,
			time.Now().UTC().Format(time.RFC3339),
			tenantID,
			date.UTC().Format(dateLayout),
			kind,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		row := tx.QueryRow(`
			SELECT id, tenant_id, date, kind, label, author_id, author_name, created_at, updated_at
			FROM slots
			WHERE tenant_id = ? AND date = ? AND kind = ?
		`, tenantID, date.UTC().Format(dateLayout), kind)

		updated, err = scanSlot(row)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
	if err != nil {
		return persistence.Slot{}, err
	}

	return updated, nil
}

// QueryRange lists the tenant's slots with date in [from, to], ordered by
// date ascending then kind.
func (r *SlotRepository) QueryRange(ctx context.Context, tenantID string, from, to time.Time) ([]persistence.Slot, error) {
	query := `
		SELECT id, tenant_id, date, kind, label, author_id, author_name, created_at, updated_at
		FROM slots
		WHERE tenant_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, kind ASC
	`

	rows, err := r.pool.DB().QueryContext(ctx, query,
		tenantID,
		from.UTC().Format(dateLayout),
		to.UTC().Format(dateLayout),
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var slots []persistence.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return slots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (persistence.Slot, error) {
	var slot persistence.Slot
	var dateStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&slot.ID,
		&slot.TenantID,
		&dateStr,
		&slot.Kind,
		&slot.Label,
		&slot.AuthorID,
		&slot.AuthorName,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Slot{}, err
	}

	if slot.Date, err = time.ParseInLocation(dateLayout, dateStr, time.UTC); err != nil {
		return persistence.Slot{}, fmt.Errorf("failed to parse date: %w", err)
	}
	if slot.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Slot{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if slot.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Slot{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return slot, nil
}
