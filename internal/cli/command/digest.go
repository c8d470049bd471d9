package command

import (
	"encoding/binary"
	"iter"

	"github.com/spaolacci/murmur3"
)

// Digest fingerprints a set of entries independently of iteration order:
// each entry is hashed on its own with murmur3 and the hashes are summed.
// Two maps with equal contents always have equal digests.
func Digest(entries iter.Seq2[string, string]) uint64 {
	var (
		sum uint64
		n   [4]byte
	)
	for k, v := range entries {
		h := murmur3.New64()
		binary.BigEndian.PutUint32(n[:], uint32(len(k)))
		h.Write(n[:])
		h.Write([]byte(k))
		h.Write([]byte(v))
		sum += h.Sum64()
	}
	return sum
}
