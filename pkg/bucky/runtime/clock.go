package runtime

import (
	"sync"
	"time"
)

// Clock is the runtime's source of wall clock time
type Clock interface {
	Now() time.Time
}

// ClockSysvar is the cluster time exposed to programs
type ClockSysvar struct {
	Slot          uint64
	UnixTimestamp int64
}

// UnixMilliseconds is the timestamp programs persist. It carries seconds
// precision.
func (c ClockSysvar) UnixMilliseconds() uint64 {
	if c.UnixTimestamp < 0 {
		return 0
	}
	return uint64(c.UnixTimestamp) * 1000
}

type systemClock struct{}

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a Clock whose time only moves when told to
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
