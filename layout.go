// Package giftid generates 64-bit unique identifiers for gift objects
// produced across a distributed workshop fleet.
//
// # ID Structure (64 bits)
//
//	┌────┬───────────────────────────────┬────────────┬─────────────┬──────┐
//	│ 63 │      62..22: timestamp        │ 21..12: wid │ 11..1: seq  │  0   │
//	│ r  │      41 bits, ms since epoch  │ 10 bits     │ 11 bits     │ gift │
//	└────┴───────────────────────────────┴────────────┴─────────────┴──────┘
//
// The layout is fixed and versioned: no field may be widened without a
// format version bump, since doing so would silently reinterpret every
// identifier already issued.
package giftid

import "time"

const (
	// Epoch is the fixed reference point (2024-01-01T00:00:00Z) in
	// milliseconds since the Unix epoch. All timestamps embedded in an
	// identifier are relative to this value. Changing it invalidates
	// every identifier issued under the old value.
	Epoch int64 = 1704067200000

	// TimestampBits is the width of the timestamp field.
	TimestampBits = 41
	// WorkshopIDBits is the width of the workshop identifier field.
	WorkshopIDBits = 10
	// SequenceBits is the width of the per-millisecond sequence field.
	SequenceBits = 11
	// GiftClassBits is the width of the gift-class tag.
	GiftClassBits = 1

	// GiftClassShift positions the gift-class bit (bit 0, no shift).
	GiftClassShift = 0
	// SequenceShift positions the sequence field above the gift-class bit.
	SequenceShift = GiftClassShift + GiftClassBits
	// WorkshopIDShift positions the workshop field above the sequence field.
	WorkshopIDShift = SequenceShift + SequenceBits
	// TimestampShift positions the timestamp field above the workshop field.
	TimestampShift = WorkshopIDShift + WorkshopIDBits

	// MaxTimestamp is the largest representable relative timestamp (41 bits).
	MaxTimestamp = 1<<TimestampBits - 1
	// MaxWorkshopID is the largest valid workshop ID (10 bits, 0-1023).
	MaxWorkshopID = 1<<WorkshopIDBits - 1
	// MaxSequence is the largest valid per-millisecond sequence (11 bits, 0-2047).
	MaxSequence = 1<<SequenceBits - 1
	// MaxGiftClass is the largest valid gift-class value (1 bit).
	MaxGiftClass = 1<<GiftClassBits - 1

	// DefaultMaxClockBackwardMs is the default tolerance, in milliseconds,
	// for a backward clock jump before the generator gives up and fails
	// a call outright instead of waiting it out.
	DefaultMaxClockBackwardMs int64 = 5
)

// GiftClass is the one-bit tag carried by every identifier for
// downstream routing.
type GiftClass uint8

const (
	// GiftClassToy is gift class 0.
	GiftClassToy GiftClass = 0
	// GiftClassCoal is gift class 1.
	GiftClassCoal GiftClass = 1
)

// String renders the gift class the way the HTTP surface accepts and
// returns it.
func (c GiftClass) String() string {
	if c == GiftClassCoal {
		return "coal"
	}
	return "toy"
}

// ParseGiftClass parses the HTTP wire representation of a gift class.
// An empty string defaults to GiftClassToy, matching SPEC_FULL.md §4.4.
func ParseGiftClass(s string) (GiftClass, error) {
	switch s {
	case "", "toy":
		return GiftClassToy, nil
	case "coal":
		return GiftClassCoal, nil
	default:
		return 0, &ConfigError{Field: "gift_class", Value: s, Reason: "unrecognized gift class", Constraint: `must be "toy" or "coal"`}
	}
}

// DefaultEpochTime is Epoch rendered as a time.Time, mostly useful for
// log lines and diagnostics.
func DefaultEpochTime() time.Time {
	return time.UnixMilli(Epoch).UTC()
}
