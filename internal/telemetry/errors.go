package telemetry

import (
	"errors"
	"fmt"
)

// Domain errors for store access.
var (
	// ErrOutOfRange indicates a read beyond the committed index or below zero.
	ErrOutOfRange = errors.New("telemetry: index outside committed range")

	// ErrUnknownSeries indicates a series name the store does not track.
	ErrUnknownSeries = errors.New("telemetry: unknown series")

	// ErrNoOpenRecord indicates a write without a preceding BeginRecord.
	ErrNoOpenRecord = errors.New("telemetry: no record in progress")
)

// RangeError reports the requested index together with the last committed
// index at the time of the call. It unwraps to ErrOutOfRange.
type RangeError struct {
	Index     int
	Committed int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("telemetry: index %d outside committed range [0, %d]", e.Index, e.Committed)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
