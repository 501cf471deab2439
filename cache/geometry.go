// Package cache implements a set-associative, write-back/write-allocate
// cache with LRU victim selection and a per-cache stride prefetcher.
package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned when a Geometry's exponents describe an
// illegal configuration (negative exponent, block+associativity
// exceeding total capacity, or a ways/sets count that is not positive).
var ErrInvalidGeometry = errors.New("cache: invalid geometry")

// Geometry describes a cache's size in the C/B/S exponent form used
// throughout this package: total capacity is 2^C bytes, block size is
// 2^B bytes, and associativity is 2^S ways per set.
type Geometry struct {
	C int
	B int
	S int
}

// NewGeometry validates and returns a Geometry for the given exponents.
// It fails with a wrapped ErrInvalidGeometry when any exponent is
// negative, when B+S exceeds C (which would make the index width
// negative), or when the exponents are too large for the ways or sets
// count to be a positive int.
func NewGeometry(c, b, s int) (Geometry, error) {
	g := Geometry{C: c, B: b, S: s}
	if err := g.validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

func (g Geometry) validate() error {
	if g.B < 0 || g.S < 0 || g.C < 0 {
		return fmt.Errorf("%w: exponents must be non-negative (c=%d b=%d s=%d)",
			ErrInvalidGeometry, g.C, g.B, g.S)
	}
	if g.B+g.S > g.C {
		return fmt.Errorf("%w: b+s must not exceed c (c=%d b=%d s=%d)",
			ErrInvalidGeometry, g.C, g.B, g.S)
	}
	if g.Ways() <= 0 || g.Sets() <= 0 {
		return fmt.Errorf("%w: ways and sets must be positive (c=%d b=%d s=%d)",
			ErrInvalidGeometry, g.C, g.B, g.S)
	}
	return nil
}

// Ways returns the number of blocks per set (2^S).
func (g Geometry) Ways() int { return 1 << g.S }

// IndexBits returns the number of index bits (C-B-S).
func (g Geometry) IndexBits() int { return g.C - g.B - g.S }

// Sets returns the number of sets (2^IndexBits).
func (g Geometry) Sets() int { return 1 << g.IndexBits() }

// Lines returns the total number of lines in the cache (Sets * Ways,
// equivalently 2^(C-B)).
func (g Geometry) Lines() int { return g.Sets() * g.Ways() }

// Decode splits a 64-bit address into its tag and set index per this
// geometry. The block offset is discarded — this simulator never
// touches sub-block bytes. Decode uses full-width uint64 shifts; it is
// total over all addresses and geometries.
func (g Geometry) Decode(addr uint64) (tag uint64, index uint64) {
	indexMask := uint64(1)<<uint(g.IndexBits()) - 1
	index = (addr >> uint(g.B)) & indexMask
	tag = addr >> uint(g.B+g.IndexBits())
	return tag, index
}

// BlockAddress returns addr with its block offset bits cleared.
func (g Geometry) BlockAddress(addr uint64) uint64 {
	return addr &^ (uint64(1)<<uint(g.B) - 1)
}
