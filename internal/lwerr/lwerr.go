// Package lwerr defines the stable error-code taxonomy surfaced across the
// core: REST/WebSocket handlers translate these into the §7 HTTP status
// mirror, but the codes themselves are transport-agnostic.
package lwerr

import (
	"errors"
	"fmt"
)

// Code is a stable, wire-visible error classification.
type Code string

const (
	NotFound           Code = "NotFound"
	TypeMismatch       Code = "TypeMismatch"
	OutOfRange         Code = "OutOfRange"
	InvalidManifest    Code = "InvalidManifest"
	AudioUnavailable   Code = "AudioUnavailable"
	QueueFull          Code = "QueueFull"
	Transient          Code = "Transient"
	ShutdownInProgress Code = "ShutdownInProgress"
)

// Error pairs a stable Code with a human-readable Message. It implements
// the standard error interface; match on Code with the package-level Is,
// which also finds an *Error wrapped inside another error.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs an *Error with a formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the given code, unwrapping as needed.
func Is(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.Code == code
}
