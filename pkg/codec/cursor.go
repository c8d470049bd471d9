package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Cursor errors.
var (
	ErrEndOfInput    = errors.New("codec: end of input")
	ErrTruncated     = errors.New("codec: truncated input")
	ErrBlockTooLarge = errors.New("codec: block exceeds size limit")
)

// DefaultMaxBlockSize bounds a single length-prefixed block (256MB).
const DefaultMaxBlockSize = 256 << 20

// Reader is a forward-only binary cursor over a byte source.
type Reader struct {
	r        *bufio.Reader
	off      int64
	maxBlock int64
}

// NewReader wraps r. An existing *bufio.Reader is used as is.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br, maxBlock: DefaultMaxBlockSize}
}

// SetMaxBlockSize changes the block size limit. Non-positive values are ignored.
func (r *Reader) SetMaxBlockSize(n int64) {
	if n > 0 {
		r.maxBlock = n
	}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// ReadFull fills p completely.
//
// It returns ErrEndOfInput when no byte was available and ErrTruncated when
// the source ended part way through p.
func (r *Reader) ReadFull(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.off += int64(n)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ErrTruncated
	case errors.Is(err, io.EOF):
		return ErrEndOfInput
	default:
		return err
	}
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrEndOfInput
		}
		return 0, err
	}
	r.off++
	return b, nil
}

// ReadUint32 reads a big-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	var buf [4]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadInt32 reads a big-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a big-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	var buf [8]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// ReadBlock reads a [len:4][bytes] block.
//
// The buffer grows with the bytes actually present, so a corrupt length
// does not allocate up front.
func (r *Reader) ReadBlock() ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int64(n) > r.maxBlock {
		return nil, fmt.Errorf("%w: %d bytes", ErrBlockTooLarge, n)
	}

	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r.r, int64(n))
	r.off += copied
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// Truncated maps ErrEndOfInput to ErrTruncated.
//
// Decoders call it on every read after the first one of an element, since
// running out of input there means the element was cut short.
func Truncated(err error) error {
	if errors.Is(err, ErrEndOfInput) {
		return ErrTruncated
	}
	return err
}

// Writer is a counting binary writer.
type Writer struct {
	w io.Writer
	n int64
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// N returns the number of bytes written so far.
func (w *Writer) N() int64 {
	return w.n
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.n += int64(n)
	return n, err
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

// WriteUint32 writes a big-endian uint32.
func (w *Writer) WriteUint32(v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteInt32 writes a big-endian int32.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteUint64 writes a big-endian uint64.
func (w *Writer) WriteUint64(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteBlock writes p as a [len:4][bytes] block.
func (w *Writer) WriteBlock(p []byte) error {
	if uint64(len(p)) > uint64(^uint32(0)) {
		return fmt.Errorf("%w: %d bytes", ErrBlockTooLarge, len(p))
	}
	if err := w.WriteUint32(uint32(len(p))); err != nil {
		return err
	}
	_, err := w.Write(p)
	return err
}
