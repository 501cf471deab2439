// Package hierarchy wires two cache.Cache instances into an L1/L2
// memory hierarchy, tallies statistics, and derives the aggregate
// average memory access time (AMAT) at shutdown.
package hierarchy

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/cache"
)

// OpRead and OpWrite are the two legal access kinds, preserved from the
// original simulator's char constants.
const (
	OpRead  = 'r'
	OpWrite = 'w'
)

// ErrInvalidOp is returned by Access when op is neither OpRead nor OpWrite.
var ErrInvalidOp = errors.New("hierarchy: invalid op")

// ErrAlreadyComplete is returned by Complete when called more than once
// for the same Hierarchy.
var ErrAlreadyComplete = errors.New("hierarchy: already completed")

// Config describes the geometry of both cache levels and the L2
// prefetch degree.
type Config struct {
	C1, B1, S1 int
	C2, B2, S2 int
	K          int
}

// DefaultConfig returns the reference configuration from the original
// simulator: C1=12,B1=5,S1=3; C2=15,B2=6,S2=5; K=2.
func DefaultConfig() Config {
	return Config{
		C1: 12, B1: 5, S1: 3,
		C2: 15, B2: 6, S2: 5,
		K: 2,
	}
}

// Option configures a Hierarchy at construction time, following the
// functional-options idiom.
type Option func(*Hierarchy)

// WithTrace enables verbose diagnostic logging to w, one terse line per
// cache lookup in the form "|L1 r 0x... HIT|": the L1 lookup of every
// access, plus a line for each L2 write-back replay and L2 demand
// lookup that an L1 non-hit causes. Off by default.
func WithTrace(w io.Writer) Option {
	return func(h *Hierarchy) { h.traceOut = w }
}

// Hierarchy orchestrates an L1 cache backed by an L2 cache. It is not
// safe for concurrent use: Access is not reentrant, mirroring the
// single-threaded contract of the rest of this simulator.
type Hierarchy struct {
	l1, l2 *cache.Cache

	s1 int // L1 associativity exponent, for HT1
	s2 int // L2 associativity exponent, for HT2

	Stats Stats

	traceOut  io.Writer
	completed bool
}

// New constructs a Hierarchy from Config. Construction is all-or-
// nothing: any invalid geometry for either cache fails before any
// state is allocated.
func New(cfg Config, opts ...Option) (*Hierarchy, error) {
	g1, err := cache.NewGeometry(cfg.C1, cfg.B1, cfg.S1)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: L1 geometry: %w", err)
	}
	g2, err := cache.NewGeometry(cfg.C2, cfg.B2, cfg.S2)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: L2 geometry: %w", err)
	}
	if cfg.K < 0 {
		return nil, fmt.Errorf("hierarchy: prefetch degree k must be >= 0, got %d", cfg.K)
	}

	l1 := cache.New(g1, 0)
	l1.Name = "L1"
	l2 := cache.New(g2, cfg.K)
	l2.Name = "L2"

	h := &Hierarchy{l1: l1, l2: l2, s1: cfg.S1, s2: cfg.S2}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Access submits one (op, address) event to the hierarchy: L1 first,
// replaying onto L2 on miss or write-back exactly as spec section 4.4
// describes, tallying every counter of Stats, then advancing both
// caches' logical clocks by one.
func (h *Hierarchy) Access(op byte, addr uint64) error {
	if op != OpRead && op != OpWrite {
		return fmt.Errorf("%w: %q", ErrInvalidOp, op)
	}

	h.Stats.L1Accesses++
	if op == OpRead {
		h.Stats.Reads++
	} else {
		h.Stats.Writes++
	}

	var l1Outcome cache.Outcome
	if op == OpRead {
		l1Outcome = h.l1.Read(addr)
	} else {
		l1Outcome = h.l1.Write(addr)
	}
	h.trace("L1", op, addr, l1Outcome)

	switch l1Outcome {
	case cache.Hit, cache.PrefetchHit:
		h.l1.Tick()
		h.l2.Tick()
		return nil
	}

	if l1Outcome == cache.WriteBack {
		wbOutcome := h.l2.Write(h.l1.LastWritebackAddr)
		h.trace("L2", OpWrite, h.l1.LastWritebackAddr, wbOutcome)
		h.tallyL2Write(wbOutcome)
	}

	var l2Outcome cache.Outcome
	if op == OpRead {
		h.Stats.L1ReadMisses++
		l2Outcome = h.l2.Read(addr)
	} else {
		h.Stats.L1WriteMisses++
		l2Outcome = h.l2.Write(addr)
	}
	h.trace("L2", op, addr, l2Outcome)

	switch l2Outcome {
	case cache.PrefetchHit:
		h.Stats.SuccessfulPrefetches++
	case cache.WriteBack:
		h.Stats.WriteBacks++
		h.tallyL2DemandMiss(op)
		h.armPrefetcher(addr)
	case cache.Miss:
		h.tallyL2DemandMiss(op)
		h.armPrefetcher(addr)
	}

	h.l1.Tick()
	h.l2.Tick()
	return nil
}

func (h *Hierarchy) tallyL2Write(outcome cache.Outcome) {
	switch outcome {
	case cache.Miss:
		h.Stats.L2WriteMisses++
	case cache.WriteBack:
		h.Stats.L2WriteMisses++
		h.Stats.WriteBacks++
	}
}

func (h *Hierarchy) tallyL2DemandMiss(op byte) {
	if op == OpRead {
		h.Stats.L2ReadMisses++
	} else {
		h.Stats.L2WriteMisses++
	}
}

func (h *Hierarchy) armPrefetcher(triggerAddr uint64) {
	prefetched, writeBacks := h.l2.ExecutePrefetch(triggerAddr)
	h.Stats.PrefetchedBlocks += uint64(prefetched)
	h.Stats.WriteBacks += uint64(writeBacks)
}

func (h *Hierarchy) trace(level string, op byte, addr uint64, outcome cache.Outcome) {
	if h.traceOut == nil {
		return
	}
	fmt.Fprintf(h.traceOut, "|%s %c 0x%x %s|\n", level, op, addr, outcome)
}

// Complete finalizes Stats.AvgAccessTime and releases the hierarchy's
// cache storage. A second call returns ErrAlreadyComplete.
func (h *Hierarchy) Complete() error {
	if h.completed {
		return ErrAlreadyComplete
	}
	h.completed = true
	h.Stats.finalize(h.s1, h.s2)
	h.l1 = nil
	h.l2 = nil
	return nil
}
