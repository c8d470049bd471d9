package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Proto encodes protobuf messages as a length-prefixed wire-format document.
//
// T is a generated message pointer type such as *wrapperspb.StringValue.
type Proto[T proto.Message] struct{}

// Encode implements Codec.
func (Proto[T]) Encode(w *Writer, v T) error {
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: marshal proto: %w", err)
	}
	return w.WriteBlock(data)
}

// Decode implements Codec.
func (Proto[T]) Decode(r *Reader) (T, error) {
	var zero T
	data, err := r.ReadBlock()
	if err != nil {
		return zero, err
	}

	msg := zero.ProtoReflect().Type().New().Interface().(T)
	if err := proto.Unmarshal(data, msg); err != nil {
		return zero, fmt.Errorf("codec: unmarshal proto: %w", err)
	}
	return msg, nil
}
