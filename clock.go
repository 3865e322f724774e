package giftid

import (
	"fmt"
	"sync"
	"time"
)

// Clock abstracts the source of monotonic wall-clock milliseconds
// relative to Epoch. Production code uses SystemClock; tests inject a
// ScriptedClock so the seed scenarios in SPEC_FULL.md §11 can drive the
// generator through exact, repeatable clock sequences.
type Clock interface {
	// NowRelativeMillis returns milliseconds since Epoch. A negative
	// value means the wall clock predates Epoch; callers treat that as
	// ErrClockBeforeEpoch, never as a panic.
	NowRelativeMillis() int64
}

// SystemClock sources time from the operating system's wall clock, but
// advances it using a monotonic reading (time.Since against a reference
// captured at construction) so that NTP step corrections and leap
// seconds never corrupt a single process's notion of elapsed time. Only
// the initial wall-clock-to-Epoch offset is ever read from wall time.
type SystemClock struct {
	epochOffset int64     // wall-clock ms since Epoch, captured once
	reference   time.Time // monotonic reference matching epochOffset
}

// NewSystemClock builds a SystemClock whose epoch offset is anchored to
// the current wall-clock time.
func NewSystemClock() *SystemClock {
	now := time.Now()
	return &SystemClock{
		epochOffset: now.UnixMilli() - Epoch,
		reference:   now,
	}
}

// NowRelativeMillis implements Clock.
func (c *SystemClock) NowRelativeMillis() int64 {
	elapsed := time.Since(c.reference).Milliseconds()
	return c.epochOffset + elapsed
}

// ScriptedClock returns a caller-supplied sequence of values, one per
// call, holding the last value once the script is exhausted. It is safe
// for concurrent use, which matters for the Property 7 concurrency
// tests that drive many goroutines against one generator.
type ScriptedClock struct {
	mu     sync.Mutex
	values []int64
	pos    int
}

// NewScriptedClock builds a ScriptedClock that returns values in order.
func NewScriptedClock(values ...int64) *ScriptedClock {
	if len(values) == 0 {
		panic("giftid: ScriptedClock requires at least one value")
	}
	return &ScriptedClock{values: values}
}

// NowRelativeMillis implements Clock.
func (c *ScriptedClock) NowRelativeMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.values[c.pos]
	if c.pos < len(c.values)-1 {
		c.pos++
	}
	return v
}

// Advance appends additional values to the end of the script, useful
// when a test needs to let a blocked wait-for-next-millisecond loop
// observe the clock moving forward from another goroutine.
func (c *ScriptedClock) Advance(values ...int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, values...)
}

// FrozenClock always returns the same value until Set is called. It
// models a clock pinned at a single instant, used for the
// sequence-exhaustion and same-millisecond seed scenarios.
type FrozenClock struct {
	mu  sync.Mutex
	now int64
}

// NewFrozenClock builds a FrozenClock pinned at now.
func NewFrozenClock(now int64) *FrozenClock {
	return &FrozenClock{now: now}
}

// NowRelativeMillis implements Clock.
func (c *FrozenClock) NowRelativeMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set pins the clock to a new value.
func (c *FrozenClock) Set(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by delta milliseconds and returns the
// new value.
func (c *FrozenClock) Advance(delta int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += delta
	return c.now
}

// String implements fmt.Stringer for diagnostic logging.
func (c *FrozenClock) String() string {
	return fmt.Sprintf("FrozenClock(%d)", c.NowRelativeMillis())
}
