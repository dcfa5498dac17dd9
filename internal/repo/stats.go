// Package repo implements the data persistence layer for the durable shout
// audit store, backed by GORM. This file provides small aggregate queries
// used by the sweep endpoint's response and by operational checks.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
)

// ShoutStats returns aggregate metadata for the audit store: the total number
// of rows and the maximum CreatedAt timestamp among them.
//
// When the store is empty, the returned count is 0 and maxCreatedAt is nil.
//
// Return values:
//   - count:        total persisted shout rows
//   - maxCreatedAt: pointer to the greatest CreatedAt, or nil if no rows
//   - err:          database error, if any
func ShoutStats(ctx context.Context, db *gorm.DB) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ShoutRecord{})

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
