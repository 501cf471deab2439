package bench_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/bench"
	"github.com/sarchlab/cachesim/hierarchy"
	"github.com/sarchlab/cachesim/tracegen"
)

func TestBench(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Bench Suite")
}

var _ = Describe("Harness", func() {
	var (
		out *bytes.Buffer
		h   *bench.Harness
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		h = bench.NewHarness(bench.HarnessConfig{
			Hierarchy: hierarchy.Config{C1: 6, B1: 1, S1: 0, C2: 8, B2: 1, S2: 1, K: 1},
			Output:    out,
		})
	})

	It("runs every registered benchmark and reports coherent stats", func() {
		h.AddBenchmark(bench.Benchmark{
			Name:        "sequential",
			Description: "walks forward through memory",
			Events:      tracegen.Sequential(0, 2, 32),
		})
		h.AddBenchmark(bench.Benchmark{
			Name:        "strided",
			Description: "alternates reads and writes",
			Events:      tracegen.Strided(0, 2, 32),
		})

		results, err := h.RunAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Name).To(Equal("sequential"))
		Expect(results[0].Stats.Reads).To(Equal(uint64(32)))
		Expect(results[1].Stats.Reads + results[1].Stats.Writes).To(Equal(uint64(32)))
	})

	It("propagates a hierarchy construction error", func() {
		h := bench.NewHarness(bench.HarnessConfig{
			Hierarchy: hierarchy.Config{C1: 4, B1: 5, S1: 0, C2: 8, B2: 1, S2: 1, K: 1},
			Output:    out,
		})
		h.AddBenchmark(bench.Benchmark{Name: "bad", Events: tracegen.Sequential(0, 1, 1)})
		_, err := h.RunAll()
		Expect(err).To(HaveOccurred())
	})

	It("renders a human-readable report", func() {
		h.AddBenchmark(bench.Benchmark{Name: "seq", Events: tracegen.Sequential(0, 2, 4)})
		results, err := h.RunAll()
		Expect(err).NotTo(HaveOccurred())

		h.PrintResults(results)
		Expect(out.String()).To(ContainSubstring("Benchmark: seq"))
		Expect(out.String()).To(ContainSubstring("AMAT:"))
	})

	It("renders CSV with a header row", func() {
		h.AddBenchmark(bench.Benchmark{Name: "seq", Events: tracegen.Sequential(0, 2, 4)})
		results, err := h.RunAll()
		Expect(err).NotTo(HaveOccurred())

		h.PrintCSV(results)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(HavePrefix("name,reads,writes"))
	})

	It("renders valid, decodable JSON", func() {
		h.AddBenchmark(bench.Benchmark{Name: "seq", Events: tracegen.Sequential(0, 2, 4)})
		results, err := h.RunAll()
		Expect(err).NotTo(HaveOccurred())

		Expect(h.PrintJSON(results)).To(Succeed())

		var decoded []bench.Result
		Expect(json.Unmarshal(out.Bytes(), &decoded)).To(Succeed())
		Expect(decoded).To(HaveLen(1))
		Expect(decoded[0].Name).To(Equal("seq"))
	})
})
