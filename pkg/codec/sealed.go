package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yndnr/journalmap/pkg/crypto/adaptive"
)

// ErrSealedOpen is returned when a sealed element fails authentication.
var ErrSealedOpen = errors.New("codec: open sealed element")

// Sealed encrypts the bytes produced by Inner with an AEAD cipher.
//
// Wire format: [len:4][nonce || ciphertext || tag]. AdditionalData, when
// set, is bound to every element and must match on decode.
type Sealed[T any] struct {
	Inner          Codec[T]
	Cipher         adaptive.Cipher
	AdditionalData []byte
}

// NewSealed returns a Sealed codec around inner.
func NewSealed[T any](inner Codec[T], cipher adaptive.Cipher) Sealed[T] {
	return Sealed[T]{Inner: inner, Cipher: cipher}
}

// Encode implements Codec.
func (s Sealed[T]) Encode(w *Writer, v T) error {
	var plain bytes.Buffer
	if err := s.Inner.Encode(NewWriter(&plain), v); err != nil {
		return err
	}

	sealed, err := s.Cipher.Encrypt(plain.Bytes(), s.AdditionalData)
	if err != nil {
		return fmt.Errorf("codec: seal element: %w", err)
	}
	return w.WriteBlock(sealed)
}

// Decode implements Codec.
func (s Sealed[T]) Decode(r *Reader) (T, error) {
	var zero T
	sealed, err := r.ReadBlock()
	if err != nil {
		return zero, err
	}

	plain, err := s.Cipher.Decrypt(sealed, s.AdditionalData)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSealedOpen, err)
	}

	v, err := s.Inner.Decode(NewReader(bytes.NewReader(plain)))
	if err != nil {
		// The plaintext is complete; running short inside it is corruption.
		return zero, fmt.Errorf("codec: decode sealed element: %w", Truncated(err))
	}
	return v, nil
}
