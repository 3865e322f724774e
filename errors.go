package giftid

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the codec and generator. Use errors.Is to
// check for these; use errors.As for the richer struct errors below.
var (
	// ErrFieldOutOfRange is returned by Encode when a field value falls
	// outside the range its bit width allows.
	ErrFieldOutOfRange = errors.New("giftid: field out of range")

	// ErrReservedBitSet is returned by Decode when bit 63 of the input
	// is set, which can never happen for an identifier this generator
	// produced.
	ErrReservedBitSet = errors.New("giftid: reserved bit is set")

	// ErrClockBeforeEpoch is returned when the clock adapter reports a
	// time before Epoch.
	ErrClockBeforeEpoch = errors.New("giftid: clock reads before epoch")

	// ErrEpochOverflow is returned when the 41-bit timestamp field is
	// exhausted — an operational event requiring an epoch rotation.
	ErrEpochOverflow = errors.New("giftid: timestamp field exhausted, epoch rotation required")

	// ErrWorkshopIDInvalid is the construction-time error kind for a
	// workshop ID outside [0, 1023]. New and NewWithConfig return it
	// wrapped in a *ConfigError, so errors.Is matches it.
	ErrWorkshopIDInvalid = errors.New("giftid: workshop id must be between 0 and 1023")
)

// ClockRegressionError is returned when the wall clock moves backward by
// more than the generator's configured tolerance. Unlike the sentinel
// errors above, it carries enough context to log or alert on.
type ClockRegressionError struct {
	// DeltaMs is how far backward the clock jumped, in milliseconds.
	DeltaMs int64
	// ToleranceMs is the configured MaxClockBackwardMs at the time.
	ToleranceMs int64
	// WorkshopID identifies which generator hit the regression.
	WorkshopID uint16
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf("giftid: clock moved backward %dms (tolerance %dms) on workshop %d",
		e.DeltaMs, e.ToleranceMs, e.WorkshopID)
}

// Unwrap returns the unexported errClockRegressionKind sentinel below.
func (e *ClockRegressionError) Unwrap() error {
	return errClockRegressionKind
}

// errClockRegressionKind is the sentinel ClockRegressionError wraps, so
// code inside this package can match the error kind with errors.Is.
// Callers outside the package use IsClockRegression or errors.As.
var errClockRegressionKind = errors.New("giftid: clock regression beyond tolerance")

// ConfigError reports a construction-time configuration problem: an
// invalid workshop ID, a malformed flag, an unrecognized gift class.
type ConfigError struct {
	Field      string
	Value      string
	Reason     string
	Constraint string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("giftid: invalid %s=%q (%s): %s", e.Field, e.Value, e.Reason, e.Constraint)
}

func (e *ConfigError) Unwrap() error {
	if e.Field == "WorkshopID" {
		return ErrWorkshopIDInvalid
	}
	return errInvalidConfigKind
}

var errInvalidConfigKind = errors.New("giftid: invalid configuration")

// IsClockRegression reports whether err is or wraps a *ClockRegressionError.
func IsClockRegression(err error) bool {
	var e *ClockRegressionError
	return errors.As(err, &e)
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}
