// Package services defines the business logic for the shoutbox: the ingestion
// pipeline, the retention sweeper, and the ambient message generator. This
// file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

// Ingestion pipeline rejections.
var (
	// ErrEmptyBody is returned when a post's body is empty after trimming.
	ErrEmptyBody = errors.New("message body is empty")

	// ErrFiltered is returned when the content filter flags the body. The
	// matched term is deliberately not included, to avoid bypass probing.
	ErrFiltered = errors.New("message rejected by content filter")

	// ErrRateLimited is returned when the sender is still inside the posting
	// cooldown window.
	ErrRateLimited = errors.New("sender is posting too frequently")
)

// Ambient generator outcomes.
var (
	// ErrAmbientTooSoon is returned when the generator ran more recently than
	// the configured minimum interval.
	ErrAmbientTooSoon = errors.New("ambient generator ran too recently")

	// ErrAmbientActive is returned when recent real activity makes generated
	// chatter unnecessary.
	ErrAmbientActive = errors.New("enough recent real activity")

	// ErrAmbientDisabled is returned when the generator is switched off.
	ErrAmbientDisabled = errors.New("ambient generator disabled")
)
