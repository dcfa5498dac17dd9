package shout

import (
	"sync"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
)

// History is the bounded in-memory buffer of the most recent accepted
// messages, used to backfill newly-opened subscriptions. It is created empty
// at process start, mutated only by the ingestion side, and never explicitly
// cleared: old entries fall off the head once the cap is reached. Contents do
// not survive a restart; the durable audit store is separate.
type History struct {
	mu    sync.Mutex
	cap   int
	items []domain.Shout
}

// NewHistory constructs a History holding at most cap messages.
// Values < 1 are coerced to 1.
func NewHistory(cap int) *History {
	if cap < 1 {
		cap = 1
	}
	return &History{cap: cap, items: make([]domain.Shout, 0, cap)}
}

// Append adds msg to the tail, evicting from the head when over capacity.
func (h *History) Append(msg domain.Shout) {
	h.mu.Lock()
	h.items = append(h.items, msg)
	if n := len(h.items); n > h.cap {
		h.items = h.items[n-h.cap:]
	}
	h.mu.Unlock()
}

// Snapshot returns a copy of the current contents in insertion order (oldest
// first). The copy is safe to iterate without holding any lock on the buffer.
func (h *History) Snapshot() []domain.Shout {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Shout, len(h.items))
	copy(out, h.items)
	return out
}

// Len reports the current number of buffered messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}
