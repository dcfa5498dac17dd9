// Package handlers provides HTTP handler implementations for the public API.
//
// This file implements the shoutbox endpoints consumed by the web widget:
//
//   - POST /shouts        — submit a message
//   - GET  /shouts        — history snapshot (oldest first)
//   - GET  /shouts/stream — live server-sent event stream
//
// Handlers depend on narrow interfaces over the service layer so tests can
// swap in fakes without a real hub or database.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
	"github.com/deckforge/go-shoutbox-backend/internal/http/middleware"
	"github.com/deckforge/go-shoutbox-backend/internal/services"
	"github.com/deckforge/go-shoutbox-backend/internal/shout"
	"github.com/deckforge/go-shoutbox-backend/internal/utils"
)

// Client-facing rejection messages. Policy rejections are deliberately
// generic: the response never reveals which rule or term matched.
const (
	msgEmptyBody   = "Empty message"
	msgFiltered    = "Please keep it civil."
	msgRateLimited = "Please wait a moment before posting again."
)

// maxHistoryLimit caps the ?limit= query parameter on GET /shouts.
const maxHistoryLimit = 100

// ShoutPoster accepts new messages and exposes the history snapshot.
// Implemented by *services.ShoutService.
type ShoutPoster interface {
	Submit(ctx context.Context, sender, body string) (*domain.Shout, error)
	Snapshot() []domain.Shout
}

// StreamHub registers and releases event-stream subscribers.
// Implemented by *shout.Hub.
type StreamHub interface {
	Subscribe() *shout.Subscriber
	Unsubscribe(*shout.Subscriber)
}

// Handlers bundles the HTTP dependencies for the shoutbox endpoints.
type Handlers struct {
	Shouts ShoutPoster
	Hub    StreamHub
}

// New constructs the handler set.
func New(shouts ShoutPoster, hub StreamHub) *Handlers {
	return &Handlers{Shouts: shouts, Hub: hub}
}

// postShoutRequest is the POST /shouts payload. Both fields are optional:
// a blank user falls back to the default display name, a blank text is
// rejected as an empty message.
type postShoutRequest struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// PostShout handles POST /shouts.
//
// Responses:
//   - 200 {"ok": true}
//   - 400 {"ok": false, "error": "Empty message"}
//   - 400 {"ok": false, "error": "Please keep it civil."}
//   - 429 {"ok": false, "error": "Please wait a moment before posting again."}
func (h *Handlers) PostShout(c *gin.Context) {
	var req postShoutRequest
	// A malformed or absent JSON body is treated the same as a blank
	// submission rather than a distinct bind error.
	_ = c.ShouldBindJSON(&req)

	_, err := h.Shouts.Submit(c.Request.Context(), req.User, req.Text)
	switch {
	case err == nil:
		ok(c, http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, services.ErrEmptyBody):
		reject(c, http.StatusBadRequest, msgEmptyBody)
	case errors.Is(err, services.ErrFiltered):
		reject(c, http.StatusBadRequest, msgFiltered)
	case errors.Is(err, services.ErrRateLimited):
		reject(c, http.StatusTooManyRequests, msgRateLimited)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not accept message")
	}
}

// ListShouts handles GET /shouts.
//
// Returns the in-memory history snapshot as a JSON array, oldest first.
// An optional ?limit= query parameter trims the result to the newest N
// entries (still oldest-first); out-of-range values are clamped.
func (h *Handlers) ListShouts(c *gin.Context) {
	msgs := h.Shouts.Snapshot()

	limit := utils.AtoiDefault(c.Query("limit"), len(msgs))
	limit = utils.ClampLimit(limit, len(msgs), maxHistoryLimit)
	if limit < len(msgs) {
		msgs = msgs[len(msgs)-limit:]
	}

	ok(c, http.StatusOK, msgs)
}

// StreamShouts handles GET /shouts/stream.
//
// Opens a server-sent event stream: a hello frame on connect, one data frame
// per broadcast message, and periodic comment pings from the hub. The
// connection stays open until the client disconnects, the hub shuts down, or
// a write fails.
func (h *Handlers) StreamShouts(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")

	flusher, okf := c.Writer.(http.Flusher)
	if !okf {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "streaming unsupported")
		return
	}

	sub := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(sub)

	if err := writeFrame(c.Writer, flusher, shout.HelloFrame()); err != nil {
		return
	}

	lg := middleware.LoggerFrom(c)
	lg.Debug().Msg("stream opened")

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			lg.Debug().Msg("stream closed by client")
			return
		case frame, open := <-sub.Frames():
			if !open {
				// Hub shut down or evicted this subscriber.
				lg.Debug().Msg("stream closed by hub")
				return
			}
			if err := writeFrame(c.Writer, flusher, frame); err != nil {
				lg.Debug().Err(err).Msg("stream write failed")
				return
			}
		}
	}
}

// writeFrame writes one pre-encoded SSE frame and flushes it to the client.
func writeFrame(w io.Writer, f http.Flusher, frame []byte) error {
	if _, err := w.Write(frame); err != nil {
		return err
	}
	f.Flush()
	return nil
}
