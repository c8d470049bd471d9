package codec

// Codec encodes and decodes one element of type T.
//
// Decode returns ErrEndOfInput when the reader is exhausted before the
// element starts and ErrTruncated when it is exhausted part way through.
type Codec[T any] interface {
	Encode(w *Writer, v T) error
	Decode(r *Reader) (T, error)
}

// String encodes strings as [len:4][utf-8 bytes].
type String struct{}

// Encode implements Codec.
func (String) Encode(w *Writer, v string) error {
	return w.WriteBlock([]byte(v))
}

// Decode implements Codec.
func (String) Decode(r *Reader) (string, error) {
	b, err := r.ReadBlock()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bytes encodes byte slices as [len:4][bytes]. A nil slice decodes as empty.
type Bytes struct{}

// Encode implements Codec.
func (Bytes) Encode(w *Writer, v []byte) error {
	return w.WriteBlock(v)
}

// Decode implements Codec.
func (Bytes) Decode(r *Reader) ([]byte, error) {
	return r.ReadBlock()
}

// Uint64 encodes uint64 values as 8 big-endian bytes.
type Uint64 struct{}

// Encode implements Codec.
func (Uint64) Encode(w *Writer, v uint64) error {
	return w.WriteUint64(v)
}

// Decode implements Codec.
func (Uint64) Decode(r *Reader) (uint64, error) {
	return r.ReadUint64()
}

// Int64 encodes int64 values as 8 big-endian bytes (two's complement).
type Int64 struct{}

// Encode implements Codec.
func (Int64) Encode(w *Writer, v int64) error {
	return w.WriteUint64(uint64(v))
}

// Decode implements Codec.
func (Int64) Decode(r *Reader) (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}
