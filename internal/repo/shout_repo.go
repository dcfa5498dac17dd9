// Package repo implements the data persistence layer for the durable shout
// audit store, backed by GORM. This file provides repository functions for
// the ShoutRecord model: the ingestion boundary's audit insert and the
// retention sweeper's age-based delete.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
)

// InsertShout writes the audit row for an accepted message.
func InsertShout(ctx context.Context, db *gorm.DB, shoutID int64, sender, body string, createdAt time.Time) (*domain.ShoutRecord, error) {
	rec := &domain.ShoutRecord{
		ID:        uuid.NewString(),
		ShoutID:   shoutID,
		Sender:    sender,
		Body:      body,
		CreatedAt: createdAt.UTC(),
	}
	return rec, db.WithContext(ctx).Create(rec).Error
}

// DeleteShoutsBefore removes every row with created_at strictly before cutoff
// and returns the number of rows deleted.
func DeleteShoutsBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("created_at < ?", cutoff.UTC()).
		Delete(&domain.ShoutRecord{})
	return res.RowsAffected, res.Error
}

// ListShouts returns recent rows ordered deterministically (CreatedAt ASC,
// ShoutID ASC). A limit <= 0 returns all rows.
func ListShouts(ctx context.Context, db *gorm.DB, limit int) ([]domain.ShoutRecord, error) {
	var out []domain.ShoutRecord
	q := db.WithContext(ctx).Order("created_at ASC, shout_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
