package jmap

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/yndnr/journalmap/internal/storage/snapshot"
	"github.com/yndnr/journalmap/internal/storage/wal"
	"github.com/yndnr/journalmap/pkg/codec"
)

// Map is an in-memory map persisted as a snapshot plus a journal.
type Map[K comparable, V any] struct {
	snapPath    string
	journalPath string

	keys    codec.Codec[K]
	values  codec.Codec[V]
	records wal.Codec[K, V]

	entries map[K]V
	// pending holds every mutation since the last Save or Load, whether or
	// not it was flushed.
	pending []wal.Record[K, V]
	journal *wal.Appender[K, V]

	version   int32
	flush     bool
	retain    bool
	tail      TailPolicy
	compactAt int64

	logger  *slog.Logger
	metrics Metrics
}

// New binds a Map to snapshotPath and journalPath and loads it.
func New[K comparable, V any](snapshotPath, journalPath string, keys codec.Codec[K], values codec.Codec[V], opts ...Option) (*Map[K, V], error) {
	if snapshotPath == "" || journalPath == "" || snapshotPath == journalPath {
		return nil, ErrInvalidPaths
	}
	if keys == nil || values == nil {
		return nil, ErrNilCodec
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	records := wal.NewCodec(keys, values)
	m := &Map[K, V]{
		snapPath:    snapshotPath,
		journalPath: journalPath,
		keys:        keys,
		values:      values,
		records:     records,
		entries:     make(map[K]V),
		journal:     wal.NewAppender(journalPath, records, o.syncWrites),
		version:     o.version,
		flush:       o.flush,
		retain:      o.retain,
		tail:        o.tail,
		compactAt:   o.autoCompact,
		logger:      o.logger.With("snapshot", snapshotPath, "journal", journalPath),
		metrics:     o.metrics,
	}

	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load replaces the map contents with the snapshot and the journal replayed
// over it, and empties the pending buffer. On error the map is unchanged.
func (m *Map[K, V]) Load() error {
	start := time.Now()

	if err := m.journal.Close(); err != nil {
		return fmt.Errorf("jmap: load: %w", err)
	}

	entries, _, err := snapshot.Read(m.snapPath, m.version, m.keys, m.values)
	if err != nil {
		return fmt.Errorf("jmap: load snapshot: %w", err)
	}
	fromSnapshot := len(entries)

	res, err := wal.Replay(m.journalPath, m.records, m.tail, func(rec wal.Record[K, V]) error {
		apply(entries, rec)
		return nil
	})
	if err != nil {
		return fmt.Errorf("jmap: replay journal: %w", err)
	}
	if res.Truncated {
		m.logger.Warn("dropping torn journal tail",
			"valid_size", res.ValidSize,
			"dropped_bytes", res.DroppedBytes)
		if err := wal.Repair(m.journalPath, res.ValidSize); err != nil {
			return fmt.Errorf("jmap: repair journal: %w", err)
		}
	}

	m.entries = entries
	m.pending = nil

	elapsed := time.Since(start)
	m.logger.Info("map loaded",
		"snapshot_entries", fromSnapshot,
		"journal_records", res.Records,
		"entries", len(entries),
		"elapsed", elapsed)
	m.metrics.Loaded(len(entries), res.Records, res.Truncated, elapsed)
	m.metrics.Entries(len(entries))
	return nil
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.entries[key]
	return ok
}

// Put stores value under key.
//
// With FlushOnMutation the record is appended to the journal first; if that
// fails the map is unchanged.
func (m *Map[K, V]) Put(key K, value V) error {
	return m.mutate(wal.Put(key, value))
}

// Remove deletes key. Removing an absent key is recorded as well and is not
// an error.
func (m *Map[K, V]) Remove(key K) error {
	return m.mutate(wal.Remove[K, V](key))
}

func (m *Map[K, V]) mutate(rec wal.Record[K, V]) error {
	if m.flush {
		if _, err := m.journal.Append(rec); err != nil {
			return fmt.Errorf("jmap: %s: %w", rec.Op, err)
		}
	}

	apply(m.entries, rec)
	m.pending = append(m.pending, rec)
	m.metrics.Mutated(rec.Op.String())
	m.metrics.Entries(len(m.entries))

	if m.flush && wal.NeedsCompaction(m.journal.Size(), m.compactAt) {
		// The mutation is already durable; a failed compaction is retried
		// on the next append.
		if _, err := m.Save(); err != nil {
			m.logger.Warn("auto compaction failed", "error", err)
		}
	}
	return nil
}

func apply[K comparable, V any](entries map[K]V, rec wal.Record[K, V]) {
	switch rec.Op {
	case wal.OpPut:
		entries[rec.Key] = rec.Value
	case wal.OpRemove:
		delete(entries, rec.Key)
	}
}

// Clear empties the map, writes an empty snapshot and deletes the journal.
// Nothing is journaled. On error the in-memory map is unchanged.
func (m *Map[K, V]) Clear() error {
	if err := m.journal.Close(); err != nil {
		return fmt.Errorf("jmap: clear: %w", err)
	}
	if _, err := snapshot.Write(m.snapPath, m.version, map[K]V{}, m.keys, m.values); err != nil {
		return fmt.Errorf("jmap: clear snapshot: %w", err)
	}
	if err := wal.Discard(m.journalPath); err != nil {
		return fmt.Errorf("jmap: clear journal: %w", err)
	}

	clear(m.entries)
	m.pending = nil

	m.logger.Info("map cleared")
	m.metrics.Cleared()
	m.metrics.Entries(0)
	return nil
}

// Save writes a snapshot of the current entries. Then, per
// RetainJournalOnSave, it either deletes the journal or rewrites it with the
// pending mutations. It returns the snapshot size plus the journal size.
//
// The pending buffer is emptied on success.
//
// The snapshot is renamed into place before the journal is discarded. A crash
// between the two leaves the old journal next to the new snapshot, and the
// next load replays it on top. Records in that journal can be older than
// mutations that were still pending when Save ran, so those keys may come
// back with stale values.
func (m *Map[K, V]) Save() (int64, error) {
	start := time.Now()

	if err := m.journal.Close(); err != nil {
		return 0, fmt.Errorf("jmap: save: %w", err)
	}

	snapBytes, err := snapshot.Write(m.snapPath, m.version, m.entries, m.keys, m.values)
	if err != nil {
		return 0, fmt.Errorf("jmap: write snapshot: %w", err)
	}

	var journalBytes int64
	if m.retain {
		journalBytes, err = wal.Rewrite(m.journalPath, m.records, m.pending)
		if err != nil {
			return 0, fmt.Errorf("jmap: rewrite journal: %w", err)
		}
	} else if err := wal.Discard(m.journalPath); err != nil {
		return 0, fmt.Errorf("jmap: discard journal: %w", err)
	}

	records := len(m.pending)
	m.pending = nil

	total := snapBytes + journalBytes
	elapsed := time.Since(start)
	m.logger.Info("map saved",
		"entries", len(m.entries),
		"snapshot_bytes", snapBytes,
		"journal_bytes", journalBytes,
		"pending_records", records,
		"elapsed", elapsed)
	m.metrics.Saved(total, elapsed)
	return total, nil
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

// All iterates over the entries in unspecified order. The map must not be
// mutated during iteration.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return maps.All(m.entries)
}

// Keys returns the keys in unspecified order.
func (m *Map[K, V]) Keys() []K {
	return slices.Collect(maps.Keys(m.entries))
}

// Pending returns the number of mutations recorded since the last Save or
// Load.
func (m *Map[K, V]) Pending() int {
	return len(m.pending)
}

// Version returns the snapshot format version.
func (m *Map[K, V]) Version() int32 {
	return m.version
}

// Paths returns the snapshot and journal paths.
func (m *Map[K, V]) Paths() (snapshotPath, journalPath string) {
	return m.snapPath, m.journalPath
}

// FlushOnMutation reports whether mutations are appended to the journal as
// they happen.
func (m *Map[K, V]) FlushOnMutation() bool {
	return m.flush
}

// SetFlushOnMutation changes the FlushOnMutation policy for later mutations.
func (m *Map[K, V]) SetFlushOnMutation(on bool) {
	m.flush = on
}

// RetainJournalOnSave reports whether Save keeps a journal of the pending
// mutations.
func (m *Map[K, V]) RetainJournalOnSave() bool {
	return m.retain
}

// SetRetainJournalOnSave changes the RetainJournalOnSave policy for later
// saves.
func (m *Map[K, V]) SetRetainJournalOnSave(on bool) {
	m.retain = on
}

// SetSyncWrites changes whether live appends are fsynced.
func (m *Map[K, V]) SetSyncWrites(on bool) {
	m.journal.SetSync(on)
}

// Close releases the journal file handle. The map stays usable and reopens
// the journal on the next live append.
func (m *Map[K, V]) Close() error {
	return m.journal.Close()
}
