package jmap

import (
	"log/slog"

	"github.com/yndnr/journalmap/internal/storage/wal"
)

// DefaultFormatVersion is the snapshot format version used when none is set.
const DefaultFormatVersion int32 = 1

// TailPolicy decides how Load treats a record cut short at the end of the
// journal.
type TailPolicy = wal.TailPolicy

const (
	// TailTruncate drops the torn record and cuts it off the file.
	TailTruncate = wal.TailTruncate
	// TailStrict fails Load with ErrTruncatedJournal.
	TailStrict = wal.TailStrict
)

type options struct {
	version     int32
	flush       bool
	retain      bool
	syncWrites  bool
	tail        TailPolicy
	autoCompact int64
	logger      *slog.Logger
	metrics     Metrics
}

func defaultOptions() options {
	return options{
		version: DefaultFormatVersion,
		flush:   true,
		tail:    TailTruncate,
		logger:  slog.Default(),
		metrics: nopMetrics{},
	}
}

// Option configures a Map.
type Option func(*options)

// WithFormatVersion sets the snapshot format version written by Save and
// required by Load.
func WithFormatVersion(v int32) Option {
	return func(o *options) {
		o.version = v
	}
}

// WithFlushOnMutation sets the initial FlushOnMutation policy (default true).
func WithFlushOnMutation(on bool) Option {
	return func(o *options) {
		o.flush = on
	}
}

// WithRetainJournalOnSave sets the initial RetainJournalOnSave policy
// (default false).
func WithRetainJournalOnSave(on bool) Option {
	return func(o *options) {
		o.retain = on
	}
}

// WithSyncWrites fsyncs the journal after every live append.
func WithSyncWrites(on bool) Option {
	return func(o *options) {
		o.syncWrites = on
	}
}

// WithTailPolicy sets how Load handles a torn journal tail.
func WithTailPolicy(p TailPolicy) Option {
	return func(o *options) {
		o.tail = p
	}
}

// WithAutoCompact makes a mutation run Save once a live append grows the
// journal beyond maxJournalBytes. Zero disables it.
func WithAutoCompact(maxJournalBytes int64) Option {
	return func(o *options) {
		o.autoCompact = maxJournalBytes
	}
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. Nil disables metrics.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m == nil {
			m = nopMetrics{}
		}
		o.metrics = m
	}
}
