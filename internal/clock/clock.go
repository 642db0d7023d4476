// Package clock measures trial reaction times and drives the live timer.
package clock

import (
	"fmt"
	"sync"
	"time"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// System is the host clock. Instants carry a monotonic reading, so
// durations between them are unaffected by wall-clock adjustments.
type System struct{}

// Now implements Clock.
func (System) Now() time.Time {
	return time.Now()
}

// Mark returns the time elapsed since reference, never negative.
func Mark(c Clock, reference time.Time) time.Duration {
	d := c.Now().Sub(reference)
	if d < 0 {
		return 0
	}
	return d
}

// FormatElapsed renders d as seconds and milliseconds, e.g. "02:045".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	millis := int64((d % time.Second) / time.Millisecond)
	return fmt.Sprintf("%02d:%03d", seconds, millis)
}

// Manual is a clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a Manual clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
