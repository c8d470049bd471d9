package wal

import (
	"bytes"
	"os"

	"github.com/yndnr/journalmap/internal/storage/fsio"
	"github.com/yndnr/journalmap/pkg/codec"
)

// Appender appends records to a journal file.
//
// The file is opened with O_APPEND on the first Append, creating it when
// absent, and kept open until Close. Each record reaches the file in a
// single write. Appender is not safe for concurrent use.
type Appender[K, V any] struct {
	path  string
	codec Codec[K, V]
	sync  bool

	file *os.File
	size int64
	buf  bytes.Buffer
}

// NewAppender returns an Appender for path. With syncWrites every append is
// followed by fsync.
func NewAppender[K, V any](path string, c Codec[K, V], syncWrites bool) *Appender[K, V] {
	return &Appender[K, V]{path: path, codec: c, sync: syncWrites}
}

// Path returns the journal path.
func (a *Appender[K, V]) Path() string {
	return a.path
}

// Size returns the journal size as of the last append, or 0 when closed.
func (a *Appender[K, V]) Size() int64 {
	return a.size
}

// SetSync changes whether appends are fsynced.
func (a *Appender[K, V]) SetSync(syncWrites bool) {
	a.sync = syncWrites
}

// Append encodes rec and writes it to the end of the journal. It returns the
// number of bytes appended.
//
// Encoding happens before the file is touched, so a codec failure leaves the
// journal unchanged. A failed write is rolled back to the previous size when
// possible so the next record starts on a boundary; the same happens when
// the fsync fails, so an error always means the record is not journaled.
func (a *Appender[K, V]) Append(rec Record[K, V]) (int64, error) {
	a.buf.Reset()
	if err := a.codec.Encode(codec.NewWriter(&a.buf), rec); err != nil {
		return 0, err
	}

	if a.file == nil {
		f, size, err := fsio.OpenAppend(a.path)
		if err != nil {
			return 0, err
		}
		a.file = f
		a.size = size
	}

	n, err := a.file.Write(a.buf.Bytes())
	if err != nil {
		if n > 0 {
			_ = a.file.Truncate(a.size)
		}
		return 0, fsio.Wrap("append", a.path, err)
	}
	if a.sync {
		if err := a.file.Sync(); err != nil {
			_ = a.file.Truncate(a.size)
			return 0, fsio.Wrap("sync", a.path, err)
		}
	}
	a.size += int64(n)
	return int64(n), nil
}

// Sync flushes the open journal to stable storage.
func (a *Appender[K, V]) Sync() error {
	if a.file == nil {
		return nil
	}
	return fsio.Wrap("sync", a.path, a.file.Sync())
}

// Close closes the file handle. A later Append reopens the journal, which
// is required after the file was replaced or removed.
func (a *Appender[K, V]) Close() error {
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	a.size = 0
	return fsio.Wrap("close", a.path, err)
}
