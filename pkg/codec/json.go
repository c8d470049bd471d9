package codec

import (
	"encoding/json"
	"fmt"
)

// JSON encodes values of T as a length-prefixed JSON document.
type JSON[T any] struct{}

// Encode implements Codec.
func (JSON[T]) Encode(w *Writer, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: marshal json: %w", err)
	}
	return w.WriteBlock(data)
}

// Decode implements Codec.
func (JSON[T]) Decode(r *Reader) (T, error) {
	var v T
	data, err := r.ReadBlock()
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("codec: unmarshal json: %w", err)
	}
	return v, nil
}
