// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, shoutbox tuning knobs
// (history cap, post cooldown, retention window, heartbeat cadence), rate
// limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-shoutbox-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// ShoutboxConfig holds the tuning knobs for the live broadcast core. All of
// these are externally configurable so deployments can be tuned without a
// rebuild.
type ShoutboxConfig struct {
	HistoryCap        int           // HISTORY_CAP: max in-memory messages kept for backfill
	PostCooldown      time.Duration // POST_COOLDOWN: minimum gap between posts per sender
	RetentionWindow   time.Duration // RETENTION_WINDOW: max age of persisted rows
	HeartbeatInterval time.Duration // HEARTBEAT_INTERVAL: SSE keep-alive cadence
	SubscriberBuffer  int           // SUBSCRIBER_BUFFER: per-subscriber outbound frame buffer
	MaxSenderRunes    int           // MAX_SENDER_RUNES: display-name cap
	MaxBodyRunes      int           // MAX_BODY_RUNES: message body cap
	DefaultSender     string        // DEFAULT_SENDER: substituted for blank names
	FilterWords       []string      // FILTER_WORDS: CSV override of the denylist (empty = built-in)
}

// AmbientConfig controls the cron-driven ambient message generator.
type AmbientConfig struct {
	Enabled     bool          // AMBIENT_ENABLED
	MinInterval time.Duration // AMBIENT_MIN_INTERVAL between generator runs
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // 0 disables; must stay 0 while SSE streams are served
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// App
	DBPath  string         // SQLite path for the durable audit store
	CronKey string         // shared secret for cron-triggered endpoints; empty disables them
	Shout   ShoutboxConfig // broadcast core tuning
	Ambient AmbientConfig  // ambient generator

	// Edge rate limiting (per-IP token bucket, distinct from the sender cooldown)
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		// A positive WriteTimeout would sever long-lived event streams, so the
		// default is 0 (no deadline). Slow-reader protection lives in the hub.
		WriteTimeout:   getdur("WRITE_TIMEOUT", 0),
		IdleTimeout:    getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:        strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:  getenv("DB_PATH", "shoutbox.db"),
		CronKey: getenv("CRON_KEY", ""),
		Shout: ShoutboxConfig{
			HistoryCap:        getint("HISTORY_CAP", 100),
			PostCooldown:      getdur("POST_COOLDOWN", 5*time.Second),
			RetentionWindow:   getdur("RETENTION_WINDOW", 48*time.Hour),
			HeartbeatInterval: getdur("HEARTBEAT_INTERVAL", 30*time.Second),
			SubscriberBuffer:  getint("SUBSCRIBER_BUFFER", 16),
			MaxSenderRunes:    getint("MAX_SENDER_RUNES", 24),
			MaxBodyRunes:      getint("MAX_BODY_RUNES", 280),
			DefaultSender:     getenv("DEFAULT_SENDER", "anon"),
			FilterWords:       splitCSV(getenv("FILTER_WORDS", "")),
		},
		Ambient: AmbientConfig{
			Enabled:     getbool("AMBIENT_ENABLED", true),
			MinInterval: getdur("AMBIENT_MIN_INTERVAL", 2*time.Hour),
		},

		// Edge rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-shoutbox-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("read/read-header/idle timeouts must be positive durations")
	}
	if cfg.WriteTimeout < 0 {
		return cfg, errors.New("WRITE_TIMEOUT must be >= 0 (0 disables the deadline)")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Shout.HistoryCap < 1 {
		return cfg, errors.New("HISTORY_CAP must be >= 1")
	}
	if cfg.Shout.PostCooldown < 0 {
		return cfg, errors.New("POST_COOLDOWN must be >= 0")
	}
	if cfg.Shout.RetentionWindow <= 0 {
		return cfg, errors.New("RETENTION_WINDOW must be > 0")
	}
	if cfg.Shout.HeartbeatInterval <= 0 {
		return cfg, errors.New("HEARTBEAT_INTERVAL must be > 0")
	}
	if cfg.Shout.SubscriberBuffer < 1 {
		return cfg, errors.New("SUBSCRIBER_BUFFER must be >= 1")
	}
	if cfg.Shout.MaxSenderRunes < 1 || cfg.Shout.MaxBodyRunes < 1 {
		return cfg, errors.New("MAX_SENDER_RUNES and MAX_BODY_RUNES must be >= 1")
	}
	if strings.TrimSpace(cfg.Shout.DefaultSender) == "" {
		return cfg, errors.New("DEFAULT_SENDER must not be empty")
	}
	if cfg.Ambient.MinInterval <= 0 {
		return cfg, errors.New("AMBIENT_MIN_INTERVAL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
