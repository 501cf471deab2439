// Package bench provides a benchmark harness for running named traces
// through a cache hierarchy and reporting the resulting statistics.
// Modeled directly on the teacher repository's timing benchmark
// harness, adapted from CPU-pipeline benchmarks to cache traces.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/cachesim/hierarchy"
	"github.com/sarchlab/cachesim/trace"
)

// Benchmark pairs a name with a trace to replay.
type Benchmark struct {
	// Name identifies the benchmark.
	Name string

	// Description explains what access pattern the benchmark exercises.
	Description string

	// Events is the trace to submit to the hierarchy, in order.
	Events []trace.Event
}

// Result holds the outcome of running one Benchmark.
type Result struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Stats       hierarchy.Stats `json:"stats"`
	WallTime    time.Duration   `json:"wall_time_ns"`
}

// HarnessConfig configures a Harness.
type HarnessConfig struct {
	// Hierarchy is the cache configuration every benchmark runs against.
	Hierarchy hierarchy.Config

	// Output is where reports are written. Defaults to os.Stdout.
	Output io.Writer
}

// DefaultHarnessConfig returns a HarnessConfig using the reference
// hierarchy geometry and stdout.
func DefaultHarnessConfig() HarnessConfig {
	return HarnessConfig{
		Hierarchy: hierarchy.DefaultConfig(),
		Output:    os.Stdout,
	}
}

// Harness runs a set of benchmarks against one hierarchy configuration
// and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a Harness with the given configuration.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{config: config}
}

// AddBenchmark adds one benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds several benchmarks to the harness.
func (h *Harness) AddBenchmarks(bs []Benchmark) {
	h.benchmarks = append(h.benchmarks, bs...)
}

// RunAll runs every registered benchmark and returns its results in
// registration order.
func (h *Harness) RunAll() ([]Result, error) {
	results := make([]Result, 0, len(h.benchmarks))
	for _, b := range h.benchmarks {
		result, err := h.run(b)
		if err != nil {
			return nil, fmt.Errorf("bench: %s: %w", b.Name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (h *Harness) run(b Benchmark) (Result, error) {
	hi, err := hierarchy.New(h.config.Hierarchy)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	for _, ev := range b.Events {
		if err := hi.Access(ev.Op, ev.Addr); err != nil {
			return Result{}, fmt.Errorf("access %c 0x%x: %w", ev.Op, ev.Addr, err)
		}
	}
	wallTime := time.Since(start)

	if err := hi.Complete(); err != nil {
		return Result{}, err
	}

	return Result{
		Name:        b.Name,
		Description: b.Description,
		Stats:       hi.Stats,
		WallTime:    wallTime,
	}, nil
}

// PrintResults writes a human-readable report.
func (h *Harness) PrintResults(results []Result) {
	w := h.config.Output
	_, _ = fmt.Fprintln(w, "=== Cache Hierarchy Benchmark Results ===")
	_, _ = fmt.Fprintln(w, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(w, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(w, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintln(w, "  --- Counters ---")
		_, _ = fmt.Fprintf(w, "  Reads / Writes:        %d / %d\n", r.Stats.Reads, r.Stats.Writes)
		_, _ = fmt.Fprintf(w, "  L1 accesses:           %d\n", r.Stats.L1Accesses)
		_, _ = fmt.Fprintf(w, "  L1 read/write misses:  %d / %d\n", r.Stats.L1ReadMisses, r.Stats.L1WriteMisses)
		_, _ = fmt.Fprintf(w, "  L2 read/write misses:  %d / %d\n", r.Stats.L2ReadMisses, r.Stats.L2WriteMisses)
		_, _ = fmt.Fprintf(w, "  Write-backs:           %d\n", r.Stats.WriteBacks)
		_, _ = fmt.Fprintf(w, "  Prefetched blocks:     %d\n", r.Stats.PrefetchedBlocks)
		_, _ = fmt.Fprintf(w, "  Successful prefetches: %d\n", r.Stats.SuccessfulPrefetches)
		_, _ = fmt.Fprintf(w, "  AMAT:                  %.3f cycles\n", r.Stats.AvgAccessTime)
		_, _ = fmt.Fprintf(w, "  Wall time:             %v\n", r.WallTime)
		_, _ = fmt.Fprintln(w, "")
	}
}

// PrintCSV writes a one-row-per-benchmark CSV report.
func (h *Harness) PrintCSV(results []Result) {
	w := h.config.Output
	_, _ = fmt.Fprintln(w,
		"name,reads,writes,l1_accesses,l1_read_misses,l1_write_misses,l2_read_misses,l2_write_misses,write_backs,prefetched_blocks,successful_prefetches,amat")

	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%.3f\n",
			r.Name,
			r.Stats.Reads,
			r.Stats.Writes,
			r.Stats.L1Accesses,
			r.Stats.L1ReadMisses,
			r.Stats.L1WriteMisses,
			r.Stats.L2ReadMisses,
			r.Stats.L2WriteMisses,
			r.Stats.WriteBacks,
			r.Stats.PrefetchedBlocks,
			r.Stats.SuccessfulPrefetches,
			r.Stats.AvgAccessTime,
		)
	}
}

// PrintJSON writes every result as a JSON array, for automated
// comparison against other runs.
func (h *Harness) PrintJSON(results []Result) error {
	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
