// Package services – AmbientService
//
// This file implements the cron-driven ambient message generator: when the
// shoutbox has been quiet, it posts a little template-generated chatter so
// the box never looks dead to a new visitor. Generated messages carry
// negative ids, which keeps them distinguishable from real user posts in the
// history buffer and the audit store, and they bypass the content filter and
// the sender cooldown (the templates are curated and the generator has its
// own pacing rules).
package services

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
	"github.com/deckforge/go-shoutbox-backend/internal/repo"
	"github.com/deckforge/go-shoutbox-backend/internal/shout"
)

// ambientNames seeds generated display names.
var ambientNames = []string{
	"Jake", "Sarah", "Mike", "Alex", "Chris", "Emma", "Ryan", "Lily",
	"Marcus", "Zoe", "Tyler", "Maya", "Ethan", "Chloe", "Nathan", "Ava",
	"Dylan", "Mia", "Caleb", "Ella", "Logan", "Sofia", "Owen", "Aria",
	"Liam", "Luna", "Finn", "Violet", "Kai", "Sage",
}

// ambientSuffixes are appended to some names; the empty entries keep most
// names plain.
var ambientSuffixes = []string{
	"", "", "", "", "", "", "",
	"_mtg", "_edh", "_magic", "99", "_plays", "MTG", "_tcg", "EDH",
}

// ambientMessages is the template pool for generated chatter.
var ambientMessages = []string{
	"what's everyone's favorite budget commander rn?",
	"best place to buy singles these days?",
	"what's the most underrated card in edh?",
	"anyone else hyped for the next set?",
	"is it worth upgrading my precon or starting fresh?",
	"what's your win rate looking like lately?",
	"anyone playing on spelltable tonight?",
	"the mana base is always the expensive part smh",
	"proxies are totally fine for casual imo",
	"this deck analyzer saved me so much time",
	"love how the mulligan sim works here",
	"my playgroup just started doing budget leagues",
	"brewing something spicy for friday",
	"edh night tomorrow, can't wait",
	"my collection is getting out of hand",
	"just discovered this site, pretty cool",
	"commander damage wins feel so good",
	"deck just went infinite turn 4 haha",
	"finally beat that one guy at my lgs",
	"hot take: mono-white is underrated",
}

const (
	// ambientActivityWindow is how far back real posts count as activity.
	ambientActivityWindow = 30 * time.Minute
	// ambientActivityThreshold is how many recent real posts suppress a run.
	ambientActivityThreshold = 3
)

// AmbientService posts generated messages through the broadcast core.
type AmbientService struct {
	DB      *gorm.DB // nil disables audit persistence
	Hub     Broadcaster
	History *shout.History

	Enabled     bool
	MinInterval time.Duration // minimum gap between generator runs

	// Now is a clock seam for tests; nil means time.Now.
	Now func() time.Time
	// Rand is a randomness seam for tests; nil means the global source.
	Rand *rand.Rand

	mu      sync.Mutex
	lastRun time.Time
	ids     shout.IDSource // separate sequence; values are negated on post
}

// Generate posts one generated message if the pacing rules allow it. It
// returns the posted message, or one of ErrAmbientDisabled,
// ErrAmbientTooSoon, ErrAmbientActive when the run is skipped.
func (a *AmbientService) Generate(ctx context.Context) (*domain.Shout, error) {
	if !a.Enabled {
		return nil, ErrAmbientDisabled
	}

	now := a.now()

	a.mu.Lock()
	if !a.lastRun.IsZero() && now.Sub(a.lastRun) < a.MinInterval {
		a.mu.Unlock()
		return nil, ErrAmbientTooSoon
	}
	a.mu.Unlock()

	if a.recentRealActivity(now) {
		return nil, ErrAmbientActive
	}

	msg := domain.Shout{
		ID:        -a.ids.Next(now), // negative id marks generated chatter
		Sender:    a.pickName(),
		Body:      a.pickMessage(),
		CreatedAt: now,
	}

	a.mu.Lock()
	a.lastRun = now
	a.History.Append(msg)
	a.Hub.Broadcast(msg)
	a.mu.Unlock()

	// Best effort, same as the real ingestion path: the message is already
	// broadcast, so a storage failure is logged rather than surfaced.
	if a.DB != nil {
		if _, err := repo.InsertShout(ctx, a.DB, msg.ID, msg.Sender, msg.Body, msg.CreatedAt); err != nil {
			log.Warn().Err(err).Int64("shout_id", msg.ID).Msg("ambient audit insert failed")
		}
	}
	return &msg, nil
}

// recentRealActivity reports whether enough real (positive-id) posts landed
// inside the activity window to make generated chatter unnecessary.
func (a *AmbientService) recentRealActivity(now time.Time) bool {
	n := 0
	for _, m := range a.History.Snapshot() {
		if m.ID > 0 && now.Sub(m.CreatedAt) < ambientActivityWindow {
			n++
			if n >= ambientActivityThreshold {
				return true
			}
		}
	}
	return false
}

func (a *AmbientService) pickName() string {
	name := ambientNames[a.intn(len(ambientNames))] + ambientSuffixes[a.intn(len(ambientSuffixes))]
	return strings.TrimSpace(name)
}

func (a *AmbientService) pickMessage() string {
	return ambientMessages[a.intn(len(ambientMessages))]
}

func (a *AmbientService) intn(n int) int {
	if a.Rand != nil {
		return a.Rand.Intn(n)
	}
	return rand.Intn(n)
}

func (a *AmbientService) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}
