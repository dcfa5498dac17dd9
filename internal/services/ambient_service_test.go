package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
	"github.com/deckforge/go-shoutbox-backend/internal/shout"
)

func newAmbient(t *testing.T) (*AmbientService, *captureHub) {
	t.Helper()
	hub := &captureHub{}
	return &AmbientService{
		Hub:         hub,
		History:     shout.NewHistory(100),
		Enabled:     true,
		MinInterval: 2 * time.Hour,
		Rand:        rand.New(rand.NewSource(1)),
	}, hub
}

func TestAmbient_Disabled(t *testing.T) {
	a, hub := newAmbient(t)
	a.Enabled = false
	if _, err := a.Generate(context.Background()); err != ErrAmbientDisabled {
		t.Fatalf("expected ErrAmbientDisabled, got %v", err)
	}
	if len(hub.msgs) != 0 {
		t.Fatalf("disabled generator must not broadcast")
	}
}

func TestAmbient_PostsNegativeIDThroughCore(t *testing.T) {
	a, hub := newAmbient(t)

	msg, err := a.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if msg.ID >= 0 {
		t.Fatalf("generated message should carry a negative id, got %d", msg.ID)
	}
	if msg.Sender == "" || msg.Body == "" {
		t.Fatalf("generated message incomplete: %+v", msg)
	}
	if len(hub.msgs) != 1 || hub.msgs[0].ID != msg.ID {
		t.Fatalf("broadcast mismatch: %+v", hub.msgs)
	}
	snap := a.History.Snapshot()
	if len(snap) != 1 || snap[0].ID != msg.ID {
		t.Fatalf("history mismatch: %+v", snap)
	}
}

func TestAmbient_MinIntervalEnforced(t *testing.T) {
	a, _ := newAmbient(t)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a.Now = func() time.Time { return ts }

	if _, err := a.Generate(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	ts = ts.Add(time.Hour)
	if _, err := a.Generate(context.Background()); err != ErrAmbientTooSoon {
		t.Fatalf("expected ErrAmbientTooSoon, got %v", err)
	}
	ts = ts.Add(90 * time.Minute) // 2.5h after the first run
	if _, err := a.Generate(context.Background()); err != nil {
		t.Fatalf("run after interval: %v", err)
	}
}

func TestAmbient_SkipsWhenRealActivityRecent(t *testing.T) {
	a, hub := newAmbient(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a.Now = func() time.Time { return now }

	// Three real (positive-id) posts within the last half hour.
	for i := int64(1); i <= 3; i++ {
		a.History.Append(domain.Shout{ID: i, Sender: "u", Body: "m", CreatedAt: now.Add(-10 * time.Minute)})
	}

	if _, err := a.Generate(context.Background()); err != ErrAmbientActive {
		t.Fatalf("expected ErrAmbientActive, got %v", err)
	}
	if len(hub.msgs) != 0 {
		t.Fatalf("suppressed run must not broadcast")
	}
}

func TestAmbient_IgnoresOldAndGeneratedActivity(t *testing.T) {
	a, _ := newAmbient(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a.Now = func() time.Time { return now }

	// Stale real posts and recent generated ones do not count as activity.
	for i := int64(1); i <= 3; i++ {
		a.History.Append(domain.Shout{ID: i, Sender: "u", Body: "m", CreatedAt: now.Add(-2 * time.Hour)})
		a.History.Append(domain.Shout{ID: -i, Sender: "g", Body: "m", CreatedAt: now.Add(-time.Minute)})
	}

	if _, err := a.Generate(context.Background()); err != nil {
		t.Fatalf("Generate should run: %v", err)
	}
}

func TestAmbient_PersistsWhenDBConfigured(t *testing.T) {
	a, _ := newAmbient(t)
	a.DB = newSvcDB(t)

	msg, err := a.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var rows []domain.ShoutRecord
	if err := a.DB.Find(&rows).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 || rows[0].ShoutID != msg.ID {
		t.Fatalf("audit row mismatch: %+v", rows)
	}
}
