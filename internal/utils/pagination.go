// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampLimit constrains a requested result count to [0, min(avail, max)].
// Non-positive requests fall back to avail, so callers can pass a raw query
// parameter without pre-validating it.
func ClampLimit(requested, avail, max int) int {
	if requested <= 0 {
		requested = avail
	}
	if requested > avail {
		requested = avail
	}
	if max > 0 && requested > max {
		requested = max
	}
	return requested
}
