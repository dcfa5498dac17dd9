// Package services – ShoutService
//
// This file implements the ingestion pipeline for shoutbox posts. Each
// submission passes a sequence of hard gates — normalization, content filter,
// per-sender cooldown — and only then enters a single serialized critical
// section that assigns the message id, appends to the in-memory history
// buffer, and hands the message to the broadcaster. Serializing those three
// steps guarantees that broadcast order matches id order even under
// concurrent submissions. A durable audit row is written after the critical
// section, best effort.
package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
	"github.com/deckforge/go-shoutbox-backend/internal/repo"
	"github.com/deckforge/go-shoutbox-backend/internal/shout"
)

// rejectedTotal counts rejected submissions by gate.
var rejectedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shoutbox_posts_rejected_total",
		Help: "Total number of rejected shout submissions by reason.",
	},
	[]string{"reason"},
)

func init() {
	prometheus.MustRegister(rejectedTotal)
}

// Broadcaster is the fan-out surface the pipeline hands accepted messages to.
// Satisfied by *shout.Hub.
type Broadcaster interface {
	Broadcast(msg domain.Shout)
}

// ShoutService runs the ingestion pipeline. All fields must be set before
// first use; the zero value is not usable. DB may be nil to disable audit
// persistence (e.g. in tests).
type ShoutService struct {
	DB      *gorm.DB
	Hub     Broadcaster
	History *shout.History
	Filter  *shout.Filter
	Limiter *shout.Cooldown
	IDs     *shout.IDSource

	MaxSenderRunes int    // display-name cap (truncated, not rejected)
	MaxBodyRunes   int    // body cap (truncated, not rejected)
	DefaultSender  string // substituted for blank display names

	// Now is a clock seam for tests; nil means time.Now.
	Now func() time.Time

	// mu serializes id assignment, history append, and broadcast handoff so
	// that id order equals broadcast order.
	mu sync.Mutex
}

// Submit runs one post through the pipeline. On success it returns the
// finished message; on rejection it returns one of ErrEmptyBody, ErrFiltered,
// or ErrRateLimited with no partial effects.
func (s *ShoutService) Submit(ctx context.Context, senderRaw, bodyRaw string) (*domain.Shout, error) {
	sender := capRunes(strings.TrimSpace(senderRaw), s.MaxSenderRunes)
	if sender == "" {
		sender = s.DefaultSender
	}
	body := capRunes(strings.TrimSpace(bodyRaw), s.MaxBodyRunes)
	if body == "" {
		rejectedTotal.WithLabelValues("empty").Inc()
		return nil, ErrEmptyBody
	}

	if s.Filter.Rejected(body) {
		rejectedTotal.WithLabelValues("filtered").Inc()
		return nil, ErrFiltered
	}

	now := s.now()
	if !s.Limiter.TryAcquire(sender, now) {
		rejectedTotal.WithLabelValues("rate_limited").Inc()
		return nil, ErrRateLimited
	}

	s.mu.Lock()
	msg := domain.Shout{
		ID:        s.IDs.Next(now),
		Sender:    sender,
		Body:      body,
		CreatedAt: now,
	}
	s.History.Append(msg)
	s.Hub.Broadcast(msg)
	s.mu.Unlock()

	s.persist(ctx, msg)
	return &msg, nil
}

// Snapshot returns the current history buffer contents, oldest first.
func (s *ShoutService) Snapshot() []domain.Shout {
	return s.History.Snapshot()
}

// persist writes the audit row, best effort: a storage failure is logged and
// never surfaced to the poster, since the message has already been broadcast.
func (s *ShoutService) persist(ctx context.Context, msg domain.Shout) {
	if s.DB == nil {
		return
	}
	if _, err := repo.InsertShout(ctx, s.DB, msg.ID, msg.Sender, msg.Body, msg.CreatedAt); err != nil {
		log.Warn().Err(err).Int64("shout_id", msg.ID).Msg("audit insert failed")
	}
}

func (s *ShoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// capRunes truncates s to at most max runes. A max <= 0 disables the cap.
func capRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
