// Package clock provides the millisecond tick sources the driver layer
// runs on: a wrapping monotonic wall clock and a manually advanced clock
// for tests. Counters wrap at 2^32; consumers are expected to compare
// times with unsigned subtraction only.
package clock

import (
	"sync"
	"time"
)

// Wrapping counts milliseconds since it was created, truncated to 32 bits.
type Wrapping struct {
	start time.Time
}

// System returns a monotonic millisecond clock anchored at the call.
func System() *Wrapping {
	return &Wrapping{start: time.Now()}
}

// NowMS returns the elapsed milliseconds, wrapping at 2^32.
func (w *Wrapping) NowMS() uint32 {
	return uint32(time.Since(w.start).Milliseconds())
}

// Manual is a test clock advanced by hand.
type Manual struct {
	mu  sync.Mutex
	now uint32
}

// NewManual returns a manual clock starting at zero.
func NewManual() *Manual {
	return &Manual{}
}

// NowMS returns the current manual time.
func (m *Manual) NowMS() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d milliseconds, wrapping at 2^32.
func (m *Manual) Advance(d uint32) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set forces the clock to an absolute value. Useful for exercising
// wraparound edges.
func (m *Manual) Set(v uint32) {
	m.mu.Lock()
	m.now = v
	m.mu.Unlock()
}
