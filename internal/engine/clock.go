package engine

import "sync/atomic"

// Clock hands out journal sequence numbers.
//
// It is independent of the registry sn: the sn is a domain step chosen by the
// caller, seq counts journaled mutations within one session.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt starts the clock at start, so the next seq is start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last seq handed out without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
