package align

import (
	"fmt"
	"sync"
)

// Counter allocates the strictly increasing cell identifiers of one
// alignment run. It is shared across every concept of the run, never
// reset per concept, and safe for a single run's concurrent phases: the
// mutex guarantees exactly one writer at a time.
//
// Counters are scoped to one alignment export job. Unrelated jobs or
// users must each own their own Counter.
type Counter struct {
	mu   sync.Mutex
	next uint64
}

// NewCounter creates a counter whose first allocation is start.
func NewCounter(start uint64) *Counter {
	return &Counter{next: start}
}

// Next returns the current value and advances the counter.
func (c *Counter) Next() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.next
	c.next++
	return v
}

// Value returns the next value to be allocated, without advancing.
func (c *Counter) Value() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// CellID formats an allocation as a cell identifier.
func CellID(n uint64) string {
	return fmt.Sprintf("cell/%d", n)
}
