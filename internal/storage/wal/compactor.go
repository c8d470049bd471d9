package wal

import (
	"io"

	"github.com/yndnr/journalmap/internal/storage/fsio"
	"github.com/yndnr/journalmap/pkg/codec"
)

// Rewrite atomically replaces the journal with exactly records, in order,
// and returns the new file size. An empty slice leaves an empty journal.
func Rewrite[K, V any](path string, c Codec[K, V], records []Record[K, V]) (int64, error) {
	return fsio.WriteAtomic(path, func(w io.Writer) error {
		cw := codec.NewWriter(w)
		for _, rec := range records {
			if err := c.Encode(cw, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Discard removes the journal. A missing journal is not an error.
func Discard(path string) error {
	return fsio.Remove(path)
}

// Size returns the journal size and whether it exists.
func Size(path string) (int64, bool, error) {
	return fsio.Size(path)
}

// NeedsCompaction reports whether size exceeds a positive threshold.
func NeedsCompaction(size, threshold int64) bool {
	return threshold > 0 && size > threshold
}
