package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func serveOnce(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	r := newTestEngine()
	rl := NewRateLimiter(100, 2, KeyByIP())
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := serveOnce(r, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d; want 200", i, w.Code)
		}
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	r := newTestEngine()
	// Zero refill rate: only the burst token is available.
	rl := NewRateLimiter(0, 1, KeyByIP())
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serveOnce(r, "10.0.0.2"); w.Code != http.StatusOK {
		t.Fatalf("first request: status = %d; want 200", w.Code)
	}
	w := serveOnce(r, "10.0.0.2")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d; want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("Retry-After = %q; want 1", got)
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	r := newTestEngine()
	rl := NewRateLimiter(0, 1, KeyByIP())
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serveOnce(r, "10.0.0.3"); w.Code != http.StatusOK {
		t.Fatalf("first IP: status = %d; want 200", w.Code)
	}
	// A different IP gets its own bucket.
	if w := serveOnce(r, "10.0.0.4"); w.Code != http.StatusOK {
		t.Fatalf("second IP: status = %d; want 200", w.Code)
	}
}

func TestNewRateLimiterCoercesBurst(t *testing.T) {
	rl := NewRateLimiter(1, 0, KeyByIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d; want 1", rl.burst)
	}
}
