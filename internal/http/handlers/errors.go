// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses via the `fail()` helper in this package. These codes give clients
// a stable, machine-readable taxonomy that supplements human-readable
// messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and mirror common HTTP status
//     semantics to aid interoperability.
//   - All infrastructure error responses include both an HTTP status and one
//     of these codes. The widget-facing shoutbox endpoints use the compact
//     {"ok": false, "error": ...} shape instead (see response.go).

package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
