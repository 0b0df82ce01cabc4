package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidLabel is returned when a position label is malformed or outside the grid.
var ErrInvalidLabel = errors.New("invalid position label")

// ErrInvalidNotation is returned when notation text cannot be decoded (or a matrix cannot be encoded).
var ErrInvalidNotation = errors.New("invalid notation")

// ErrInvalidConfiguration is returned for bad geometry, rotation or scale arguments.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrAssetLoad is returned to a pending creation when the asset loader rejected its label.
var ErrAssetLoad = errors.New("asset load failure")

// ErrAssetNotFound is returned by asset loaders that have no resource for a label.
var ErrAssetNotFound = errors.New("asset not found")

// ErrSuperseded is returned to a pending creation whose resolution was replaced by a newer one
// before the asset arrived.
var ErrSuperseded = errors.New("creation superseded by a newer position")

// ErrTokenNotFound is returned when a token reference does not exist on the board.
var ErrTokenNotFound = errors.New("token not found")

// ErrPositionNotFound is returned when a position book has no entry for a name.
var ErrPositionNotFound = errors.New("position not found")

// ErrBoardNotFound is returned when a session manager has no board for an ID.
var ErrBoardNotFound = errors.New("board not found")

// ErrRotationInFlight is returned when an absolute rotation is requested while a rotation
// cycle is running or queued.
var ErrRotationInFlight = errors.New("rotation in flight")

// ErrDriverStopped is returned when a command is sent to a driver that is no longer running.
var ErrDriverStopped = errors.New("driver stopped")

// LabelError describes why a position label was rejected.
type LabelError struct {
	Label  string
	Reason string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("label %q: %s", e.Label, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidLabel).
func (e *LabelError) Unwrap() error {
	return ErrInvalidLabel
}

// NotationError describes why notation text was rejected.
// Row is the 1-based row (highest rank first) where decoding failed, or 0 when the
// failure is not tied to a single row.
type NotationError struct {
	Notation string
	Row      int
	Reason   string
}

func (e *NotationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("notation %q row %d: %s", e.Notation, e.Row, e.Reason)
	}
	return fmt.Sprintf("notation %q: %s", e.Notation, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidNotation).
func (e *NotationError) Unwrap() error {
	return ErrInvalidNotation
}

// ConfigError wraps ErrInvalidConfiguration with the offending field.
type ConfigError struct {
	Field  string
	Reason string
	Value  any
}

func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("config %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config %q: %s (got %v)", e.Field, e.Reason, e.Value)
}

// Unwrap allows errors.Is(err, ErrInvalidConfiguration).
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}
