// Package progress provides a step counter for long-running map
// operations so callers can report completion percentages.
package progress

import "sync/atomic"

// Counter tracks completed steps against an expected total. It is safe
// for concurrent observation while one goroutine advances it.
type Counter struct {
	total uint64
	done  atomic.Uint64
}

// NewCounter creates a counter expecting total steps. A zero total is
// allowed and reports 100% immediately.
func NewCounter(total uint64) *Counter {
	return &Counter{total: total}
}

// Increase records additional expected steps.
func (c *Counter) Increase(steps uint64) {
	atomic.AddUint64(&c.total, steps)
}

// Step records completed steps.
func (c *Counter) Step(steps uint64) {
	c.done.Add(steps)
}

// Done returns the number of completed steps.
func (c *Counter) Done() uint64 { return c.done.Load() }

// Percent returns completion in [0,100].
func (c *Counter) Percent() float64 {
	total := atomic.LoadUint64(&c.total)
	if total == 0 {
		return 100
	}
	done := c.done.Load()
	if done > total {
		done = total
	}
	return float64(done) * 100 / float64(total)
}
