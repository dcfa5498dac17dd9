package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
	"github.com/deckforge/go-shoutbox-backend/internal/shout"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:shoutsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.ShoutRecord{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// captureHub records broadcast messages in order.
type captureHub struct {
	msgs []domain.Shout
}

func (c *captureHub) Broadcast(msg domain.Shout) { c.msgs = append(c.msgs, msg) }

func newTestService(t *testing.T, db *gorm.DB) (*ShoutService, *captureHub) {
	t.Helper()
	f, err := shout.NewFilter(nil)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	hub := &captureHub{}
	svc := &ShoutService{
		DB:             db,
		Hub:            hub,
		History:        shout.NewHistory(100),
		Filter:         f,
		Limiter:        shout.NewCooldown(5 * time.Second),
		IDs:            shout.NewIDSource(),
		MaxSenderRunes: 24,
		MaxBodyRunes:   280,
		DefaultSender:  "anon",
	}
	return svc, hub
}

// fixedClock returns a Now func pinned to ts; advance by reassigning.
func fixedClock(ts *time.Time) func() time.Time {
	return func() time.Time { return *ts }
}

// ---------- Submit: rejections ----------

func TestShoutService_Submit_EmptyBody(t *testing.T) {
	svc, hub := newTestService(t, nil)
	_, err := svc.Submit(context.Background(), "Ann", "   \t ")
	if err != ErrEmptyBody {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if len(hub.msgs) != 0 || svc.History.Len() != 0 {
		t.Fatalf("rejection must have no side effects: broadcasts=%d history=%d", len(hub.msgs), svc.History.Len())
	}
}

func TestShoutService_Submit_Filtered(t *testing.T) {
	svc, hub := newTestService(t, nil)
	_, err := svc.Submit(context.Background(), "Ann", "what the fuck")
	if err != ErrFiltered {
		t.Fatalf("expected ErrFiltered, got %v", err)
	}
	if len(hub.msgs) != 0 || svc.History.Len() != 0 {
		t.Fatalf("filtered post must have no side effects")
	}
}

func TestShoutService_Submit_RateLimited(t *testing.T) {
	svc, hub := newTestService(t, nil)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(&ts)

	if _, err := svc.Submit(context.Background(), "Ann", "first"); err != nil {
		t.Fatalf("first post: %v", err)
	}
	ts = ts.Add(2 * time.Second)
	if _, err := svc.Submit(context.Background(), "Ann", "second"); err != ErrRateLimited {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	// Cooldown runs from the first acceptance, not from the rejection.
	ts = ts.Add(3 * time.Second)
	if _, err := svc.Submit(context.Background(), "Ann", "third"); err != nil {
		t.Fatalf("post after cooldown: %v", err)
	}
	if len(hub.msgs) != 2 {
		t.Fatalf("broadcasts = %d, want 2", len(hub.msgs))
	}
}

// ---------- Submit: acceptance ----------

func TestShoutService_Submit_Success(t *testing.T) {
	db := newSvcDB(t)
	svc, hub := newTestService(t, db)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(&ts)

	msg, err := svc.Submit(context.Background(), "  Ann ", " hi there ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if msg.Sender != "Ann" || msg.Body != "hi there" {
		t.Fatalf("fields not trimmed: %+v", msg)
	}
	if msg.ID != ts.UnixMilli() {
		t.Fatalf("id = %d, want wall clock %d", msg.ID, ts.UnixMilli())
	}
	if !msg.CreatedAt.Equal(ts) {
		t.Fatalf("CreatedAt = %v, want acceptance time %v", msg.CreatedAt, ts)
	}

	if len(hub.msgs) != 1 || hub.msgs[0].ID != msg.ID {
		t.Fatalf("broadcast mismatch: %+v", hub.msgs)
	}
	snap := svc.Snapshot()
	if len(snap) != 1 || snap[0].ID != msg.ID {
		t.Fatalf("history mismatch: %+v", snap)
	}

	// Audit row persisted.
	var rows []domain.ShoutRecord
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("query audit rows: %v", err)
	}
	if len(rows) != 1 || rows[0].ShoutID != msg.ID || rows[0].Body != "hi there" {
		t.Fatalf("audit row mismatch: %+v", rows)
	}
}

func TestShoutService_Submit_DefaultSenderAndCaps(t *testing.T) {
	svc, _ := newTestService(t, nil)

	msg, err := svc.Submit(context.Background(), "   ", "hello")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if msg.Sender != "anon" {
		t.Fatalf("blank sender should default: %q", msg.Sender)
	}

	longName := strings.Repeat("n", 50)
	longBody := strings.Repeat("b", 500)
	msg2, err := svc.Submit(context.Background(), longName, longBody)
	if err != nil {
		t.Fatalf("Submit long: %v", err)
	}
	if got := len([]rune(msg2.Sender)); got != 24 {
		t.Fatalf("sender runes = %d, want 24", got)
	}
	if got := len([]rune(msg2.Body)); got != 280 {
		t.Fatalf("body runes = %d, want 280", got)
	}
}

func TestShoutService_Submit_IDsStrictlyIncrease(t *testing.T) {
	svc, hub := newTestService(t, nil)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(&ts) // frozen clock: every submit lands in the same millisecond
	svc.Limiter = shout.NewCooldown(0)

	var last int64
	for i := 0; i < 10; i++ {
		msg, err := svc.Submit(context.Background(), fmt.Sprintf("u%d", i), "hello")
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if msg.ID <= last {
			t.Fatalf("id %d not greater than previous %d", msg.ID, last)
		}
		last = msg.ID
	}
	// Broadcast order matches id order.
	for i := 1; i < len(hub.msgs); i++ {
		if hub.msgs[i].ID <= hub.msgs[i-1].ID {
			t.Fatalf("broadcast order diverged from id order at %d: %+v", i, hub.msgs)
		}
	}
}

func TestShoutService_HistoryCapHonored(t *testing.T) {
	svc, _ := newTestService(t, nil)
	svc.History = shout.NewHistory(100)
	svc.Limiter = shout.NewCooldown(0)

	for i := 0; i < 150; i++ {
		if _, err := svc.Submit(context.Background(), fmt.Sprintf("u%d", i), fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	snap := svc.Snapshot()
	if len(snap) != 100 {
		t.Fatalf("history length = %d, want exactly 100", len(snap))
	}
	if snap[len(snap)-1].Body != "m149" || snap[0].Body != "m50" {
		t.Fatalf("history window wrong: first=%q last=%q", snap[0].Body, snap[len(snap)-1].Body)
	}
}
