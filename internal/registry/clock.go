package registry

import "sync/atomic"

// StepClock holds the registry's current sn.
//
// Unlike a tick counter it is moved to caller-chosen values, but only
// forwards. Reads are atomic so Current can be called without the registry
// lock; writes happen under it.
type StepClock struct {
	sn atomic.Int64
}

// NewStepClock creates a clock positioned at base.
func NewStepClock(base int64) *StepClock {
	c := &StepClock{}
	c.sn.Store(base)
	return c
}

// Current returns the current sn.
func (c *StepClock) Current() int64 {
	return c.sn.Load()
}

// AdvanceTo moves the clock to sn. It fails, leaving the clock unchanged,
// if sn is behind the current value. Staying on the same sn is allowed.
func (c *StepClock) AdvanceTo(sn int64) error {
	for {
		cur := c.sn.Load()
		if sn < cur {
			return newStepError(sn, cur)
		}
		if c.sn.CompareAndSwap(cur, sn) {
			return nil
		}
	}
}
