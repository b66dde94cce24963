package tracker

import "time"

// idClock issues task ids from a millisecond clock. Two creations within
// the same millisecond get consecutive ids instead of colliding.
type idClock struct {
	now  func() time.Time
	last int64
}

func newIDClock(now func() time.Time) *idClock {
	if now == nil {
		now = time.Now
	}
	return &idClock{now: now}
}

// next returns a fresh id, strictly greater than every id seen so far
func (c *idClock) next() int64 {
	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return ms
}

// observe records an existing id so later ids do not collide with it
func (c *idClock) observe(id int64) {
	if id > c.last {
		c.last = id
	}
}

// stamp returns the current time at the model's millisecond precision
func (c *idClock) stamp() time.Time {
	return msTime(c.now().UnixMilli())
}
