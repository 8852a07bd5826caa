// Package errors provides standardized error sentinels for the Lectern codebase.
//
// The engine's typed errors (unknown book, missing verses, invalid reference
// syntax, and so on) live next to the code that produces them; each unwraps to
// one of the sentinels here so callers can classify failures with errors.Is
// without importing every producing package.
package errors

import "errors"

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)
