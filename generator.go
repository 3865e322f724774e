package giftid

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// ErrContextCanceled is returned when the supplied context is done
// before or during ID generation.
var ErrContextCanceled = errors.New("giftid: context canceled")

// Config configures a Generator.
type Config struct {
	// WorkshopID uniquely identifies this generator instance among the
	// fleet. Must be in [0, MaxWorkshopID].
	WorkshopID uint16

	// Clock supplies relative-to-Epoch milliseconds. Defaults to a
	// SystemClock when nil.
	Clock Clock

	// MaxClockBackwardMs is the largest backward clock jump the
	// generator tolerates by waiting it out before giving up and
	// returning a ClockRegressionError. Defaults to
	// DefaultMaxClockBackwardMs.
	MaxClockBackwardMs int64
}

// DefaultConfig returns a Config with production defaults for the given
// workshop ID.
func DefaultConfig(workshopID uint16) Config {
	return Config{
		WorkshopID:         workshopID,
		MaxClockBackwardMs: DefaultMaxClockBackwardMs,
	}
}

// Validate checks the configuration, defaulting any zero-valued fields.
func (c *Config) Validate() error {
	if c.WorkshopID > MaxWorkshopID {
		return &ConfigError{
			Field:      "WorkshopID",
			Value:      strconv.FormatInt(int64(c.WorkshopID), 10),
			Reason:     "out of range",
			Constraint: "must be between 0 and 1023",
		}
	}
	if c.MaxClockBackwardMs < 0 {
		return &ConfigError{
			Field:      "MaxClockBackwardMs",
			Value:      strconv.FormatInt(c.MaxClockBackwardMs, 10),
			Reason:     "must be non-negative",
			Constraint: "milliseconds must be >= 0",
		}
	}
	if c.MaxClockBackwardMs == 0 {
		c.MaxClockBackwardMs = DefaultMaxClockBackwardMs
	}
	if c.Clock == nil {
		c.Clock = NewSystemClock()
	}
	return nil
}

// Metrics holds a point-in-time snapshot of generator activity. Every
// field is a monotonically increasing counter read atomically.
type Metrics struct {
	Generated        int64
	ClockBackward    int64
	ClockBackwardErr int64
	SequenceOverflow int64
	WaitTimeUs       int64
}

// Generator issues unique 64-bit gift identifiers for one workshop. It
// is safe for concurrent use: every call runs inside one critical
// section guarded by a mutex, and the mutex stays held across the
// bounded clock-regression and next-millisecond waits.
type Generator struct {
	mu            sync.Mutex
	clock         Clock
	workshopID    uint16
	sequence      uint16
	lastTimestamp int64
	maxBackwardMs int64

	generated        atomic.Int64
	clockBackward    atomic.Int64
	clockBackwardErr atomic.Int64
	sequenceOverflow atomic.Int64
	waitTimeUs       atomic.Int64
}

// New creates a Generator with default configuration for workshopID.
func New(workshopID uint16) (*Generator, error) {
	return NewWithConfig(DefaultConfig(workshopID))
}

// NewWithConfig creates a Generator from an explicit Config.
func NewWithConfig(cfg Config) (*Generator, error) {
	if err := (&cfg).Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		clock:         cfg.Clock,
		workshopID:    cfg.WorkshopID,
		lastTimestamp: -1,
		maxBackwardMs: cfg.MaxClockBackwardMs,
	}, nil
}

// Generate issues one ID of the default gift class (toy).
func (g *Generator) Generate() (ID, error) {
	return g.GenerateWithContext(context.Background(), GiftClassToy)
}

// GenerateWithContext issues one ID of the given gift class, honoring
// ctx cancellation while waiting out a clock regression or a sequence
// exhaustion.
//
// Algorithm, matching the critical section's invariants exactly:
//  1. Read the clock.
//  2. If time moved backward by no more than the configured tolerance,
//     wait it out; beyond tolerance, fail with ClockRegressionError.
//  3. If still in the same millisecond as the previous call, increment
//     the sequence; on overflow, block until the next millisecond.
//  4. Otherwise (a new millisecond), reset the sequence to 0.
//  5. Encode and return.
func (g *Generator) GenerateWithContext(ctx context.Context, giftClass GiftClass) (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	select {
	case <-ctx.Done():
		return 0, ErrContextCanceled
	default:
	}

	timestamp := g.clock.NowRelativeMillis()
	if timestamp < 0 {
		return 0, ErrClockBeforeEpoch
	}
	if timestamp > MaxTimestamp {
		return 0, ErrEpochOverflow
	}

	if timestamp < g.lastTimestamp {
		g.clockBackward.Add(1)
		diff := g.lastTimestamp - timestamp

		if diff <= g.maxBackwardMs {
			waitStart := time.Now()
			timer := time.NewTimer(time.Duration(diff) * time.Millisecond)
			select {
			case <-timer.C:
				timestamp = g.clock.NowRelativeMillis()
				g.waitTimeUs.Add(time.Since(waitStart).Microseconds())
			case <-ctx.Done():
				timer.Stop()
				return 0, ErrContextCanceled
			}
		}

		if timestamp < g.lastTimestamp {
			g.clockBackwardErr.Add(1)
			return 0, &ClockRegressionError{
				DeltaMs:     g.lastTimestamp - timestamp,
				ToleranceMs: g.maxBackwardMs,
				WorkshopID:  g.workshopID,
			}
		}
	}

	var sequence uint16
	if timestamp == g.lastTimestamp {
		sequence = (g.sequence + 1) & MaxSequence
		if sequence == 0 {
			g.sequenceOverflow.Add(1)
			var err error
			timestamp, err = g.waitNextMillis(ctx, timestamp)
			if err != nil {
				return 0, err
			}
		}
	}

	raw, err := Encode(timestamp, g.workshopID, sequence, giftClass)
	if err != nil {
		return 0, err
	}

	g.lastTimestamp = timestamp
	g.sequence = sequence
	g.generated.Add(1)
	return ID(raw), nil
}

// waitNextMillis busy-waits, yielding the scheduler between polls,
// until the clock advances past lastTimestamp. It holds g.mu the whole
// time: the wait is expected to be well under a millisecond, so
// releasing the lock would only add contention overhead.
func (g *Generator) waitNextMillis(ctx context.Context, lastTimestamp int64) (int64, error) {
	waitStart := time.Now()
	for {
		select {
		case <-ctx.Done():
			return 0, ErrContextCanceled
		default:
		}
		now := g.clock.NowRelativeMillis()
		if now > lastTimestamp {
			g.waitTimeUs.Add(time.Since(waitStart).Microseconds())
			return now, nil
		}
		runtime.Gosched()
	}
}

// GenerateBatch issues count IDs of the given gift class in a single
// locked critical section, amortizing the mutex acquisition cost across
// the whole batch. On error it returns whatever prefix was generated
// before the failure, alongside the error.
func (g *Generator) GenerateBatch(ctx context.Context, count int, giftClass GiftClass) ([]ID, error) {
	if count <= 0 {
		return []ID{}, nil
	}

	ids := make([]ID, 0, count)

	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < count; i++ {
		if i%100 == 0 {
			select {
			case <-ctx.Done():
				return ids, ErrContextCanceled
			default:
			}
		}

		timestamp := g.clock.NowRelativeMillis()
		if timestamp < 0 {
			return ids, ErrClockBeforeEpoch
		}
		if timestamp > MaxTimestamp {
			return ids, ErrEpochOverflow
		}

		if timestamp < g.lastTimestamp {
			g.clockBackward.Add(1)
			diff := g.lastTimestamp - timestamp
			if diff <= g.maxBackwardMs {
				waitStart := time.Now()
				timer := time.NewTimer(time.Duration(diff) * time.Millisecond)
				select {
				case <-timer.C:
					timestamp = g.clock.NowRelativeMillis()
					g.waitTimeUs.Add(time.Since(waitStart).Microseconds())
				case <-ctx.Done():
					timer.Stop()
					return ids, ErrContextCanceled
				}
			}
			if timestamp < g.lastTimestamp {
				g.clockBackwardErr.Add(1)
				return ids, &ClockRegressionError{
					DeltaMs:     g.lastTimestamp - timestamp,
					ToleranceMs: g.maxBackwardMs,
					WorkshopID:  g.workshopID,
				}
			}
		}

		var sequence uint16
		if timestamp == g.lastTimestamp {
			sequence = (g.sequence + 1) & MaxSequence
			if sequence == 0 {
				g.sequenceOverflow.Add(1)
				var err error
				timestamp, err = g.waitNextMillis(ctx, timestamp)
				if err != nil {
					return ids, err
				}
			}
		}

		raw, err := Encode(timestamp, g.workshopID, sequence, giftClass)
		if err != nil {
			return ids, err
		}

		g.lastTimestamp = timestamp
		g.sequence = sequence
		ids = append(ids, ID(raw))
	}

	g.generated.Add(int64(len(ids)))
	return ids, nil
}

// WorkshopID returns the workshop ID this generator was configured
// with.
func (g *Generator) WorkshopID() uint16 {
	return g.workshopID
}

// Metrics returns a snapshot of the generator's runtime counters.
func (g *Generator) Metrics() Metrics {
	return Metrics{
		Generated:        g.generated.Load(),
		ClockBackward:    g.clockBackward.Load(),
		ClockBackwardErr: g.clockBackwardErr.Load(),
		SequenceOverflow: g.sequenceOverflow.Load(),
		WaitTimeUs:       g.waitTimeUs.Load(),
	}
}
