// Package handlers provides HTTP handler implementations for the public API.
//
// This file implements the scheduler-facing endpoints. They are not part of
// the widget surface: an external cron service calls them with a shared
// secret in the X-Cron-Key header.
//
//   - POST /cron/sweep   — delete persisted messages past the retention window
//   - POST /cron/ambient — post an ambient message when the box has gone quiet
package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
	"github.com/deckforge/go-shoutbox-backend/internal/http/middleware"
	"github.com/deckforge/go-shoutbox-backend/internal/services"
)

// cronKeyHeader carries the shared secret set by the external scheduler.
const cronKeyHeader = "X-Cron-Key"

// Sweeper deletes persisted messages older than the retention window.
// Implemented by *services.SweepService.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (cutoff time.Time, deleted int64, err error)
}

// AmbientGenerator posts a generated message when the shoutbox is idle.
// Implemented by *services.AmbientService.
type AmbientGenerator interface {
	Generate(ctx context.Context) (*domain.Shout, error)
}

// CronHandlers bundles the scheduler endpoints and their shared secret.
type CronHandlers struct {
	Key     string
	Sweeper Sweeper
	Ambient AmbientGenerator
}

// NewCron constructs the cron handler set. An empty key disables both
// endpoints: every request is rejected with 401.
func NewCron(key string, sweeper Sweeper, ambient AmbientGenerator) *CronHandlers {
	return &CronHandlers{Key: key, Sweeper: sweeper, Ambient: ambient}
}

// authorized checks X-Cron-Key against the configured secret in constant
// time. A blank configured secret never matches.
func (h *CronHandlers) authorized(c *gin.Context) bool {
	got := c.GetHeader(cronKeyHeader)
	if h.Key == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Key)) == 1
}

// Sweep handles POST /cron/sweep.
//
// Responses:
//   - 200 {"ok": true, "deleted": N, "cutoff": "<RFC3339>"}
//   - 401 on a missing or wrong key
//   - 500 {"ok": false, "error": "..."} when the delete fails
func (h *CronHandlers) Sweep(c *gin.Context) {
	if !h.authorized(c) {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid cron key")
		return
	}

	cutoff, deleted, err := h.Sweeper.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Msg("retention sweep failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "sweep failed"})
		return
	}

	lg := middleware.LoggerFrom(c)
	lg.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("retention sweep")
	ok(c, http.StatusOK, gin.H{
		"ok":      true,
		"deleted": deleted,
		"cutoff":  cutoff.UTC().Format(time.RFC3339),
	})
}

// GenerateAmbient handles POST /cron/ambient.
//
// Skips (ok:false with a reason, still HTTP 200 so the scheduler does not
// retry) when generation is disabled, ran too recently, or real users have
// been active. Otherwise posts exactly one generated message.
//
// Responses:
//   - 200 {"ok": true, "posted": 1, "messages": [{"user": ..., "text": ...}]}
//   - 200 {"ok": false, "reason": "..."}
//   - 401 on a missing or wrong key
func (h *CronHandlers) GenerateAmbient(c *gin.Context) {
	if !h.authorized(c) {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid cron key")
		return
	}

	msg, err := h.Ambient.Generate(c.Request.Context())
	switch {
	case err == nil:
		ok(c, http.StatusOK, gin.H{
			"ok":     true,
			"posted": 1,
			"messages": []gin.H{
				{"user": msg.Sender, "text": msg.Body},
			},
		})
	case errors.Is(err, services.ErrAmbientTooSoon):
		ok(c, http.StatusOK, gin.H{"ok": false, "reason": "Too soon"})
	case errors.Is(err, services.ErrAmbientActive):
		ok(c, http.StatusOK, gin.H{"ok": false, "reason": "Enough recent real activity"})
	case errors.Is(err, services.ErrAmbientDisabled):
		ok(c, http.StatusOK, gin.H{"ok": false, "reason": "Disabled"})
	default:
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Msg("ambient generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "generation failed"})
	}
}
