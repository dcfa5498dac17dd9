// Package services – SweepService
//
// This file implements the retention sweeper over the durable audit store.
// The sweeper is invoked by an external scheduler (cron endpoint); it is not
// self-scheduling and owns no retry policy. It never touches the in-memory
// history buffer.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deckforge/go-shoutbox-backend/internal/repo"
)

// SweepService deletes persisted shout rows older than the retention window.
type SweepService struct {
	DB     *gorm.DB
	Window time.Duration // rows with created_at < now - Window are deleted
}

// Sweep removes every row older than the window relative to now and returns
// the cutoff used and the number of rows deleted. It is idempotent and safe
// to run concurrently with itself: an overlapping run deletes zero or a
// disjoint set. Errors are returned to the caller, never retried here.
func (s *SweepService) Sweep(ctx context.Context, now time.Time) (cutoff time.Time, deleted int64, err error) {
	cutoff = now.Add(-s.Window).UTC()
	deleted, err = repo.DeleteShoutsBefore(ctx, s.DB, cutoff)
	if err != nil {
		return cutoff, deleted, err
	}

	if count, newest, serr := repo.ShoutStats(ctx, s.DB); serr == nil {
		ev := log.Debug().Int64("deleted", deleted).Int64("remaining", count)
		if newest != nil {
			ev = ev.Time("newest", *newest)
		}
		ev.Msg("retention sweep complete")
	}

	return cutoff, deleted, nil
}
