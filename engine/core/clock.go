package core

import "time"

// Clock tracks frame timing for the loop.
type Clock struct {
	now    func() time.Time
	start  time.Time
	last   time.Time
	dt     time.Duration
	frames uint64
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Clock{now: now, start: t, last: t}
}

// Tick advances one frame and returns the time elapsed since the previous one.
func (c *Clock) Tick() time.Duration {
	t := c.now()
	c.dt = t.Sub(c.last)
	c.last = t
	c.frames++
	return c.dt
}

func (c *Clock) Now() time.Time           { return c.now() }
func (c *Clock) Frame() time.Duration     { return c.dt }
func (c *Clock) Frames() uint64           { return c.frames }
func (c *Clock) Uptime() time.Duration    { return c.now().Sub(c.start) }
func (c *Clock) SinceTick() time.Duration { return c.now().Sub(c.last) }
