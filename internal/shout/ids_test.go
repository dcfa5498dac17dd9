package shout

import (
	"sync"
	"testing"
	"time"
)

func TestIDSource_TracksWallClock(t *testing.T) {
	s := NewIDSource()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got, want := s.Next(now), now.UnixMilli(); got != want {
		t.Fatalf("Next() = %d, want wall clock %d", got, want)
	}
}

func TestIDSource_SameMillisecond(t *testing.T) {
	s := NewIDSource()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := s.Next(now)
	b := s.Next(now)
	c := s.Next(now)
	if !(a < b && b < c) {
		t.Fatalf("ids not strictly increasing within one millisecond: %d %d %d", a, b, c)
	}
	if b != a+1 || c != b+1 {
		t.Fatalf("same-millisecond ids should increment by one: %d %d %d", a, b, c)
	}
}

func TestIDSource_ClockStepsBackward(t *testing.T) {
	s := NewIDSource()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := s.Next(now)
	// Simulate an NTP correction stepping the clock back one minute.
	b := s.Next(now.Add(-time.Minute))
	if b <= a {
		t.Fatalf("id regressed after backward clock step: %d then %d", a, b)
	}
	if b != a+1 {
		t.Fatalf("backward step should fall back to counter+1: got %d, want %d", b, a+1)
	}
	// Once the clock passes the counter again, ids resume tracking it.
	later := now.Add(time.Minute)
	if got, want := s.Next(later), later.UnixMilli(); got != want {
		t.Fatalf("Next() after recovery = %d, want %d", got, want)
	}
}

func TestIDSource_ConcurrentUnique(t *testing.T) {
	s := NewIDSource()
	now := time.Now()
	const n = 200
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- s.Next(now)
		}()
	}
	wg.Wait()
	close(ids)
	seen := make(map[int64]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id issued: %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d unique ids, got %d", n, len(seen))
	}
}
