package jmap

import "time"

// Metrics receives operation events from a Map.
type Metrics interface {
	// Loaded is called after a successful Load.
	Loaded(entries, records int, truncated bool, elapsed time.Duration)
	// Mutated is called after a successful Put ("put") or Remove ("remove").
	Mutated(op string)
	// Saved is called after a successful Save with the bytes on disk.
	Saved(bytes int64, elapsed time.Duration)
	// Cleared is called after a successful Clear.
	Cleared()
	// Entries reports the live entry count after every change.
	Entries(n int)
}

type nopMetrics struct{}

func (nopMetrics) Loaded(int, int, bool, time.Duration) {}
func (nopMetrics) Mutated(string)                       {}
func (nopMetrics) Saved(int64, time.Duration)           {}
func (nopMetrics) Cleared()                             {}
func (nopMetrics) Entries(int)                          {}
