package sequence

import "sync"

// Counter is an in-memory Generator cycling through [min, max].
type Counter struct {
	mu   sync.Mutex
	min  int
	max  int
	next int
}

// NewCounter returns a counter over [DefaultMin, DefaultMax] whose first number is DefaultMin.
func NewCounter() *Counter {
	return NewCounterRange(DefaultMin, DefaultMax)
}

// NewCounterRange returns a counter over [min, max]. It panics if max < min.
func NewCounterRange(min, max int) *Counter {
	if max < min {
		panic("sequence: max must not be less than min")
	}
	return &Counter{min: min, max: max, next: min}
}

// Next implements Generator.
func (c *Counter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.next
	if v >= c.max {
		c.next = c.min
	} else {
		c.next = v + 1
	}
	return v
}

// ResetFrom implements Generator.
func (c *Counter) ResetFrom(n int) {
	c.mu.Lock()
	c.next = n
	c.mu.Unlock()
}

// Peek returns the number the next call to Next will hand out.
func (c *Counter) Peek() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// Size is the number of distinct values in the counter's range.
func (c *Counter) Size() int {
	return c.max - c.min + 1
}

var _ Generator = (*Counter)(nil)
