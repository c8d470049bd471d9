package wal

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/yndnr/journalmap/pkg/codec"
)

// Codec pairs the key and value codecs used for records.
type Codec[K, V any] struct {
	Keys   codec.Codec[K]
	Values codec.Codec[V]
}

// NewCodec returns a record codec.
func NewCodec[K, V any](keys codec.Codec[K], values codec.Codec[V]) Codec[K, V] {
	return Codec[K, V]{Keys: keys, Values: values}
}

// Encode writes rec to w.
func (c Codec[K, V]) Encode(w *codec.Writer, rec Record[K, V]) error {
	if !rec.Op.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidOp, rec.Op)
	}
	if err := w.WriteByte(byte(rec.Op)); err != nil {
		return err
	}
	if err := c.Keys.Encode(w, rec.Key); err != nil {
		return fmt.Errorf("wal: encode key: %w", err)
	}
	if rec.Op == OpPut {
		if err := c.Values.Encode(w, rec.Value); err != nil {
			return fmt.Errorf("wal: encode value: %w", err)
		}
	}
	return nil
}

// Decode reads one record from r.
//
// It returns io.EOF when r is exhausted at a record boundary and
// ErrTruncatedTail when r ends inside a record. OS read failures are
// returned unchanged.
func (c Codec[K, V]) Decode(r *codec.Reader) (Record[K, V], error) {
	var rec Record[K, V]
	start := r.Offset()

	tag, err := r.ReadByte()
	if err != nil {
		if errors.Is(err, codec.ErrEndOfInput) {
			return rec, io.EOF
		}
		return rec, err
	}

	rec.Op = Op(tag)
	if !rec.Op.Valid() {
		return rec, fmt.Errorf("%w: unknown tag 0x%02x at offset %d", ErrCorruptRecord, tag, start)
	}

	rec.Key, err = c.Keys.Decode(r)
	if err != nil {
		return rec, classify(err, "key", start)
	}
	if rec.Op == OpPut {
		rec.Value, err = c.Values.Decode(r)
		if err != nil {
			return rec, classify(err, "value", start)
		}
	}
	return rec, nil
}

func classify(err error, part string, start int64) error {
	switch {
	case errors.Is(err, codec.ErrEndOfInput), errors.Is(err, codec.ErrTruncated):
		return fmt.Errorf("%w: %s cut short in record at offset %d", ErrTruncatedTail, part, start)
	case isOSError(err):
		return err
	default:
		return fmt.Errorf("%w: decode %s at offset %d: %v", ErrCorruptRecord, part, start, err)
	}
}

func isOSError(err error) bool {
	var pe *fs.PathError
	return errors.As(err, &pe)
}
