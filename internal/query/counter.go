package query

import "sync/atomic"

// DefaultOverloadThreshold is the number of consecutive overload responses
// after which every client sharing the counter fails fast.
const DefaultOverloadThreshold = 5

// OverloadCounter counts consecutive overload (429) responses across every
// client that shares it. It is safe for concurrent use.
type OverloadCounter struct {
	count     atomic.Int64
	threshold int64
}

// NewOverloadCounter creates a counter that trips at threshold
func NewOverloadCounter(threshold int) *OverloadCounter {
	if threshold <= 0 {
		threshold = DefaultOverloadThreshold
	}
	return &OverloadCounter{threshold: int64(threshold)}
}

// Increment records one overload response. It returns the new count and
// whether the threshold has been reached.
func (c *OverloadCounter) Increment() (int64, bool) {
	n := c.count.Add(1)
	return n, n >= c.threshold
}

// Reset clears the counter. Clients call it on any non-overload response;
// batch callers call it after a long cooldown.
func (c *OverloadCounter) Reset() {
	c.count.Store(0)
}

// Load returns the current count
func (c *OverloadCounter) Load() int64 {
	return c.count.Load()
}

// Threshold returns the trip threshold
func (c *OverloadCounter) Threshold() int64 {
	return c.threshold
}
