package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRequestIDGeneratesWhenAbsent(t *testing.T) {
	r := newTestEngine()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got == "" {
		t.Fatalf("expected X-Request-ID to be set")
	}
}

func TestRequestIDPropagatesIncoming(t *testing.T) {
	r := newTestEngine()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("X-Request-ID = %q; want abc-123", got)
	}
}

func TestLoggerAttachesRequestScopedLogger(t *testing.T) {
	r := newTestEngine()
	r.Use(RequestID(), Logger(LogOptions{MaskHeaders: []string{"X-Cron-Key"}}))
	r.GET("/x", func(c *gin.Context) {
		if LoggerFrom(c) == nil {
			t.Fatalf("LoggerFrom returned nil")
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Cron-Key", "secret")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
}

func TestLoggerFromWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatalf("expected fallback logger, got nil")
	}
}

func TestRecoveryConvertsPanicTo500(t *testing.T) {
	r := newTestEngine()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
	if body := w.Body.String(); body == "" {
		t.Fatalf("expected JSON error body")
	}
}

func TestHeaderLogKey(t *testing.T) {
	if got := headerLogKey("X-Cron-Key"); got != "hdr_x-cron-key" {
		t.Fatalf("headerLogKey = %q", got)
	}
}
