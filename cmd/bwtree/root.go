// Package bwtree is the entry point for the bwtree demonstration CLI. It
// exists purely to exercise the library end to end; the core package
// itself never reads a flag, an environment variable, or a config file -
// only this command does, translating flags straight into
// bwtree.Options.
package bwtree

import (
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/latchfree/bwtree/lib/bwtree"
	"github.com/latchfree/bwtree/lib/db/util"
)

var (
	keyCount   int
	threads    int
	nodeBytes  int
	unique     bool
	logLevel   string
)

// RootCmd is the bwtree CLI's root command.
var RootCmd = &cobra.Command{
	Use:   "bwtree",
	Short: "Demonstrates and benchmarks the bwtree latch-free index",
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Runs an Insert/Lookup throughput benchmark against an in-memory index",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&keyCount, "keys", 100_000, "number of distinct keys to insert")
	benchCmd.Flags().IntVar(&threads, "threads", 8, "number of concurrent goroutines driving the benchmark")
	benchCmd.Flags().IntVar(&nodeBytes, "node-bytes", 4096, "target node size in bytes, used to derive slot counts")
	benchCmd.Flags().BoolVar(&unique, "unique", false, "run the index in unique-key mode")
	benchCmd.Flags().StringVar(&logLevel, "log-level", "info", "one of debug, info, warn, error")

	RootCmd.AddCommand(benchCmd)
}

func runBench(_ *cobra.Command, _ []string) error {
	ix := bwtree.New(bwtree.Options[int, string]{
		Less:          func(a, b int) bool { return a < b },
		KeyEqual:      func(a, b int) bool { return a == b },
		ValueEqual:    func(a, b string) bool { return a == b },
		NodeSizeBytes: nodeBytes,
		Unique:        unique,
		Logger:        bwtree.NewLogger("bwtree-bench", bwtree.ParseLogLevel(logLevel)),
	})
	defer ix.Close()

	fmt.Printf("Configuration:\n  keys=%d threads=%d nodeBytes=%d unique=%t instance=%x\n\n",
		keyCount, threads, nodeBytes, unique, util.GenerateSeed())

	insertResult := testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(threads)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := counter % keyCount
				if err := ix.Insert(key, fmt.Sprintf("v%d", key)); err != nil && err != bwtree.ErrDuplicateKey {
					fmt.Fprintf(os.Stderr, "insert error: %v\n", err)
				}
				counter++
			}
		})
	})
	printResult("insert", insertResult)

	lookupResult := testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(threads)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				ix.Lookup(counter % keyCount)
				counter++
			}
		})
	})
	printResult("lookup", lookupResult)

	stats := ix.Stats()
	fmt.Printf("\nStats: leaves=%d mean-occupancy=%.1f min=%.0f max=%.0f\n",
		stats.LeafCount, stats.LeafOccupancy.Mean, stats.LeafOccupancy.Min, stats.LeafOccupancy.Max)

	return nil
}

func printResult(name string, result testing.BenchmarkResult) {
	nsPerOp := math.Max(float64(result.NsPerOp()), 1)
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	fmt.Printf("%-10s%.0fns/op (%s/op)\t%.0f ops/sec\n", name, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}
