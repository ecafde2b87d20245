package manager

import "sync/atomic"

// atomicCounter is a tiny monotonic counter; the manager's three lifecycle
// totals are never decremented, only added to and read.
type atomicCounter struct {
	v atomic.Int64
}

func (c *atomicCounter) add(n int64) { c.v.Add(n) }
func (c *atomicCounter) load() int   { return int(c.v.Load()) }
