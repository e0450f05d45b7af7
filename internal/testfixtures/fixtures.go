// Package testfixtures provides deterministic fixtures shared across
// package tests: a controllable clock and slot builders.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/rotation-scheduler/internal/persistence"
	"github.com/example/rotation-scheduler/internal/recurrence"
)

var slotCounter uint64

// referenceTime is a fixed Thursday used as the anchor of generated fixtures.
var referenceTime = time.Date(2024, time.March, 7, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the shared fixture anchor instant.
func ReferenceTime() time.Time {
	return referenceTime
}

// SlotFixture represents a deterministic slot record.
type SlotFixture struct {
	ID         string
	TenantID   string
	Date       time.Time
	Kind       recurrence.Kind
	Label      string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SlotOption configures the generated slot fixture.
type SlotOption func(*SlotFixture)

// NewSlotFixture returns a deterministic slot fixture with optional
// overrides. Consecutive fixtures land on consecutive Thursdays.
func NewSlotFixture(opts ...SlotOption) SlotFixture {
	idx := atomic.AddUint64(&slotCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SlotFixture{
		ID:        fmt.Sprintf("slot-%03d", idx),
		TenantID:  "tenant-fixture",
		Date:      recurrence.DateOnly(referenceTime).AddDate(0, 0, int(idx-1)*7),
		Kind:      recurrence.KindTraining,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSlotID overrides the generated slot ID.
func WithSlotID(id string) SlotOption {
	return func(f *SlotFixture) {
		f.ID = id
	}
}

// WithSlotTenant overrides the tenant scope.
func WithSlotTenant(tenantID string) SlotOption {
	return func(f *SlotFixture) {
		f.TenantID = tenantID
	}
}

// WithSlotDate overrides the slot date, normalised to date-only.
func WithSlotDate(date time.Time) SlotOption {
	return func(f *SlotFixture) {
		f.Date = recurrence.DateOnly(date)
	}
}

// WithSlotKind overrides the slot kind.
func WithSlotKind(kind recurrence.Kind) SlotOption {
	return func(f *SlotFixture) {
		f.Kind = kind
	}
}

// WithSlotDetails marks the slot filled with the given label and author.
func WithSlotDetails(label, authorID, authorName string) SlotOption {
	return func(f *SlotFixture) {
		f.Label = label
		f.AuthorID = authorID
		f.AuthorName = authorName
	}
}

// Persistence returns the fixture as a persistence.Slot value.
func (f SlotFixture) Persistence() persistence.Slot {
	return persistence.Slot{
		ID:         f.ID,
		TenantID:   f.TenantID,
		Date:       f.Date,
		Kind:       string(f.Kind),
		Label:      f.Label,
		AuthorID:   f.AuthorID,
		AuthorName: f.AuthorName,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}
