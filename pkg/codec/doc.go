// Package codec provides the byte cursor and element codecs used by the
// journaled map to move keys and values on and off disk.
//
// A Codec encodes one element to a Writer and decodes one element from a
// Reader. Decoders distinguish two kinds of exhaustion:
//
//   - ErrEndOfInput: the source ended before the first byte of the element.
//     Callers reading a stream of elements treat this as a clean end.
//   - ErrTruncated: the source ended after the element had started.
//
// Built-in codecs:
//
//   - String, Bytes: [len:4 big-endian][bytes]
//   - Uint64, Int64: 8 bytes big-endian
//   - JSON[T], Proto[T]: length-prefixed encoded document
//   - Sealed[T]: length-prefixed AEAD ciphertext of an inner codec's bytes
//
// Codecs are plain values injected by the caller; there is no global
// registry.
package codec
