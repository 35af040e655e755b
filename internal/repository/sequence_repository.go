package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/stayloop/service-booking/internal/domain/sequence"
)

// SequenceModel is the GORM model for the sequence_counters table.
type SequenceModel struct {
	Name string `gorm:"primaryKey;size:64"`
	Seq  int64  `gorm:"not null"`
}

// TableName sets the table name.
func (SequenceModel) TableName() string { return "sequence_counters" }

// nextSeqSQL creates the counter at 1 or bumps it, returning the new value in the same statement.
const nextSeqSQL = `
INSERT INTO sequence_counters (name, seq) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET seq = sequence_counters.seq + 1
RETURNING seq`

// SQLSequenceAllocator issues IDs from a counters table with an atomic upsert.
type SQLSequenceAllocator struct {
	db *gorm.DB
}

// NewSQLSequenceAllocator creates a new SQLSequenceAllocator.
func NewSQLSequenceAllocator(db *gorm.DB) *SQLSequenceAllocator {
	return &SQLSequenceAllocator{db: db}
}

// Next returns the next value of counter.
func (a *SQLSequenceAllocator) Next(ctx context.Context, counter sequence.Counter) (int64, error) {
	var seq int64
	if err := a.db.WithContext(ctx).Raw(nextSeqSQL, string(counter)).Scan(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to allocate %s: %w", counter, err)
	}
	if seq <= 0 {
		return 0, fmt.Errorf("failed to allocate %s: counter returned %d", counter, seq)
	}
	return seq, nil
}
