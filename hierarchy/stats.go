package hierarchy

// Stats accumulates the counters produced by a Hierarchy's accesses and
// the AMAT derived from them at Complete.
type Stats struct {
	Reads      uint64 `json:"reads"`
	Writes     uint64 `json:"writes"`
	L1Accesses uint64 `json:"l1_accesses"`

	L1ReadMisses  uint64 `json:"l1_read_misses"`
	L1WriteMisses uint64 `json:"l1_write_misses"`
	L2ReadMisses  uint64 `json:"l2_read_misses"`
	L2WriteMisses uint64 `json:"l2_write_misses"`

	WriteBacks           uint64 `json:"write_backs"`
	PrefetchedBlocks     uint64 `json:"prefetched_blocks"`
	SuccessfulPrefetches uint64 `json:"successful_prefetches"`

	AvgAccessTime float64 `json:"avg_access_time"`
}

// finalize computes AvgAccessTime using the closed-form AMAT formula.
// MR2's denominator (L1_read_misses+L2_read_misses) is preserved
// verbatim from the original simulator even though it is neither the
// L2 demand miss rate nor the fraction of L1 read misses that miss L2
// — changing it would desynchronize this simulator's output from the
// source it was modeled on.
func (s *Stats) finalize(s1, s2 int) {
	ht1 := 2 + 0.2*float64(s1)
	ht2 := 4 + 0.4*float64(s2)
	const mp2 = 500.0

	mr1 := float64(s.L1ReadMisses+s.L1WriteMisses) / float64(s.L1Accesses)
	mr2 := float64(s.L2ReadMisses) / float64(s.L1ReadMisses+s.L2ReadMisses)

	mp1 := ht2 + mr2*mp2
	s.AvgAccessTime = ht1 + mr1*mp1
}
