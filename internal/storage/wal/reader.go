package wal

import (
	"errors"
	"io"
	"iter"
	"os"

	"github.com/yndnr/journalmap/internal/storage/fsio"
	"github.com/yndnr/journalmap/pkg/codec"
)

// Reader decodes records from a journal file, front to back.
type Reader[K, V any] struct {
	path  string
	codec Codec[K, V]

	file  *os.File
	r     *codec.Reader
	valid int64
	done  bool
}

// NewReader opens the journal at path. A missing journal reads as empty.
func NewReader[K, V any](path string, c Codec[K, V]) (*Reader[K, V], error) {
	f, err := fsio.Open(path)
	if err != nil {
		return nil, err
	}

	rd := &Reader[K, V]{path: path, codec: c, file: f}
	if f == nil {
		rd.done = true
		return rd, nil
	}
	rd.r = codec.NewReader(f)
	return rd, nil
}

// Read returns the next record.
//
// It returns io.EOF once the journal is exhausted at a record boundary,
// an error matching ErrTruncatedTail when the file ends inside a record, and
// an error matching ErrCorruptRecord for undecodable records. After any
// error further calls return the same class of error.
func (r *Reader[K, V]) Read() (Record[K, V], error) {
	if r.done {
		return Record[K, V]{}, io.EOF
	}

	rec, err := r.codec.Decode(r.r)
	if err != nil {
		if isOSError(err) {
			err = fsio.Wrap("read", r.path, err)
		}
		if errors.Is(err, io.EOF) {
			r.done = true
		}
		return rec, err
	}
	r.valid = r.r.Offset()
	return rec, nil
}

// ValidOffset returns the end offset of the last complete record read.
func (r *Reader[K, V]) ValidOffset() int64 {
	return r.valid
}

// Close releases the file handle.
func (r *Reader[K, V]) Close() error {
	r.done = true
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return fsio.Wrap("close", r.path, err)
}

// Iterate returns a lazy, single-use sequence over the journal at path.
//
// A failure is yielded once as the error half of a pair and ends the
// sequence; a clean end of file ends it silently.
func Iterate[K, V any](path string, c Codec[K, V]) iter.Seq2[Record[K, V], error] {
	return func(yield func(Record[K, V], error) bool) {
		rd, err := NewReader(path, c)
		if err != nil {
			yield(Record[K, V]{}, err)
			return
		}
		defer rd.Close()

		for {
			rec, err := rd.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// TailPolicy decides what Replay does with a torn final record.
type TailPolicy int

const (
	// TailTruncate ends the journal at the last complete record.
	TailTruncate TailPolicy = iota
	// TailStrict fails the replay with ErrTruncatedTail.
	TailStrict
)

// String returns the policy name used in configuration.
func (p TailPolicy) String() string {
	if p == TailStrict {
		return "strict"
	}
	return "truncate"
}

// ParseTailPolicy maps "truncate" and "strict" to a TailPolicy.
func ParseTailPolicy(s string) (TailPolicy, bool) {
	switch s {
	case "", "truncate":
		return TailTruncate, true
	case "strict":
		return TailStrict, true
	default:
		return TailTruncate, false
	}
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	// Records is the number of records applied.
	Records int
	// ValidSize is the byte length of the complete records.
	ValidSize int64
	// Truncated is set when a torn tail was dropped.
	Truncated bool
	// DroppedBytes is the size of the dropped tail.
	DroppedBytes int64
}

// Replay decodes every record of the journal at path and passes it to
// apply in file order. A missing journal applies nothing.
//
// Replay never modifies the file; callers that keep appending after a
// dropped tail should cut it with Repair first.
func Replay[K, V any](path string, c Codec[K, V], policy TailPolicy, apply func(Record[K, V]) error) (ReplayResult, error) {
	var res ReplayResult

	rd, err := NewReader(path, c)
	if err != nil {
		return res, err
	}
	defer rd.Close()

	for {
		rec, err := rd.Read()
		if err != nil {
			res.ValidSize = rd.ValidOffset()
			switch {
			case errors.Is(err, io.EOF):
				return res, nil
			case errors.Is(err, ErrTruncatedTail) && policy == TailTruncate:
				size, _, serr := fsio.Size(path)
				if serr != nil {
					return res, serr
				}
				res.Truncated = true
				res.DroppedBytes = size - res.ValidSize
				return res, nil
			default:
				return res, err
			}
		}

		if err := apply(rec); err != nil {
			return res, err
		}
		res.Records++
	}
}

// Repair cuts a torn tail off the journal so that it ends at validSize.
func Repair(path string, validSize int64) error {
	return fsio.Truncate(path, validSize)
}
