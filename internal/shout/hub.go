// Package shout implements the in-process broadcast core of the shoutbox:
// the subscriber registry and fan-out hub, the bounded in-memory history
// buffer, the per-sender cooldown gate, the monotonic id source, and the
// deny-list content filter. All shared state in this package is owned by its
// component and serialized behind a mutex; callers never observe internal
// slices or maps directly.
package shout

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
)

var (
	// subscribersGauge tracks the number of currently registered stream consumers.
	subscribersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shoutbox_subscribers",
		Help: "Current number of registered shoutbox subscribers.",
	})

	// broadcastsTotal counts accepted messages fanned out to subscribers.
	broadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shoutbox_broadcasts_total",
		Help: "Total number of messages broadcast to subscribers.",
	})

	// evictedTotal counts subscribers dropped because their outbound buffer
	// was full when a frame arrived (slow or dead consumers).
	evictedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shoutbox_subscribers_evicted_total",
		Help: "Total number of subscribers evicted on write overflow.",
	})
)

func init() {
	prometheus.MustRegister(subscribersGauge, broadcastsTotal, evictedTotal)
}

// Subscriber is one registered stream consumer. The hub pushes pre-encoded
// SSE frames into its channel; the transport layer drains the channel and
// writes frames to the wire. The channel is closed exactly once, when the
// subscriber is evicted or unsubscribed, which ends the consumer's read loop.
type Subscriber struct {
	frames chan []byte
}

// Frames returns the receive side of the subscriber's frame channel.
func (s *Subscriber) Frames() <-chan []byte { return s.frames }

// Hub is the connection registry and broadcaster. It tracks every open
// subscriber, fans accepted messages out to all of them, emits periodic
// keep-alive frames, and evicts subscribers whose buffers overflow.
//
// Delivery is best-effort and non-blocking: a frame is dropped together with
// its subscriber when the subscriber's buffer is full, so one stalled consumer
// can never delay delivery to the others.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}

	buffer    int
	heartbeat time.Duration
}

// NewHub constructs a Hub.
//
//   - buffer: per-subscriber outbound frame buffer; values < 1 are coerced to 1.
//     A subscriber that falls this many frames behind is evicted.
//   - heartbeat: interval between keep-alive frames written by Run.
func NewHub(buffer int, heartbeat time.Duration) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:      make(map[*Subscriber]struct{}),
		buffer:    buffer,
		heartbeat: heartbeat,
	}
}

// Subscribe registers and returns a new subscriber. The caller owns draining
// the frame channel and must call Unsubscribe when the underlying connection
// closes.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{frames: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	subscribersGauge.Set(float64(n))
	return sub
}

// Unsubscribe removes a subscriber from the registry and closes its channel.
// It is idempotent: removing an already-removed subscriber is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.frames)
	}
	n := len(h.subs)
	h.mu.Unlock()
	subscribersGauge.Set(float64(n))
}

// Broadcast encodes msg once and hands the frame to every registered
// subscriber. A subscriber whose buffer is full is evicted; delivery to the
// remaining subscribers is unaffected.
func (h *Hub) Broadcast(msg domain.Shout) {
	h.send(DataFrame(msg))
	broadcastsTotal.Inc()
}

// Run emits a keep-alive comment frame to every subscriber on the configured
// heartbeat interval, primarily to defeat idle-connection timeouts in
// intermediary proxies. It blocks until ctx is cancelled, then closes every
// remaining subscriber.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.heartbeat)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-t.C:
			h.send(PingFrame())
		}
	}
}

// Len reports the current registry size.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// send writes one frame to every subscriber, evicting those that cannot
// accept it without blocking.
func (h *Hub) send(frame []byte) {
	h.mu.Lock()
	var evicted int
	for sub := range h.subs {
		select {
		case sub.frames <- frame:
		default:
			// Buffer full: the consumer is not draining. Evict it so the
			// remaining subscribers keep receiving.
			delete(h.subs, sub)
			close(sub.frames)
			evicted++
		}
	}
	n := len(h.subs)
	h.mu.Unlock()
	if evicted > 0 {
		evictedTotal.Add(float64(evicted))
	}
	subscribersGauge.Set(float64(n))
}

// closeAll unregisters and closes every subscriber (process shutdown).
func (h *Hub) closeAll() {
	h.mu.Lock()
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.frames)
	}
	h.mu.Unlock()
	subscribersGauge.Set(0)
}
