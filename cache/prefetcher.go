package cache

// prefetcher is a stride detector owned by one Cache. It observes the
// block addresses of consecutive misses and, once two consecutive
// deltas agree on a non-zero stride, issues k prefetches ahead of the
// triggering address. It has no training phase beyond that single
// prior miss.
type prefetcher struct {
	k             int
	pendingStride uint64 // signed block delta, stored as its uint64 bit pattern
	lastMissAddr  uint64
}

// execute implements spec section 4.3's algorithm verbatim, including
// its 64-bit wraparound stride arithmetic: the delta is compared by
// bit-equality, so a wrapped subtraction that happens to repeat still
// confirms a stride.
func (p *prefetcher) execute(c *Cache, triggerAddr uint64) (prefetchedBlocks, writeBacks int) {
	x := c.Geometry().BlockAddress(triggerAddr)
	d := x - p.lastMissAddr

	if d == p.pendingStride && d != 0 {
		for i := 1; i <= p.k; i++ {
			outcome := c.Prefetch(triggerAddr + uint64(i)*d)
			switch outcome {
			case Miss:
				prefetchedBlocks++
			case WriteBack:
				prefetchedBlocks++
				writeBacks++
			}
		}
	}

	p.lastMissAddr = x
	p.pendingStride = d

	return prefetchedBlocks, writeBacks
}
