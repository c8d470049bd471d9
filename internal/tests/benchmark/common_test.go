package benchmark

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/journalmap/internal/storage/wal"
	"github.com/yndnr/journalmap/pkg/codec"
)

// EntryCounts defines the map sizes for benchmarking.
var EntryCounts = []int{1000, 10000, 100000}

// SmallEntryCounts for quick benchmarks.
var SmallEntryCounts = []int{1000, 10000}

var (
	stringCodec  = codec.String{}
	journalCodec = wal.NewCodec[string, string](stringCodec, stringCodec)
)

// newKey generates a unique, roughly time-ordered key.
func newKey() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, _ := ulid.New(ulid.Timestamp(time.Now()), entropy)
	return "key-" + strings.ToLower(id.String())
}

// newValue returns a value of n bytes.
func newValue(n int) string {
	return strings.Repeat("v", n)
}

// makeEntries builds count entries with 64-byte values.
func makeEntries(count int) map[string]string {
	entries := make(map[string]string, count)
	for range count {
		entries[newKey()] = newValue(64)
	}
	return entries
}

// paths returns a snapshot and journal path in a fresh directory.
func paths(b *testing.B) (snapshotPath, journalPath string) {
	b.Helper()
	dir := b.TempDir()
	return filepath.Join(dir, "bench.snap"), filepath.Join(dir, "bench.journal")
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithEntryCounts runs a benchmark function with various map sizes.
func runWithEntryCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("entries_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
