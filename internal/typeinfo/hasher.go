package typeinfo

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// stableDigest hashes arbitrary canonical bytes down to 64 bits using
// the low 8 bytes of a SHA-256 digest, little-endian. This matches the
// stable hashing approach used by the system this core was modeled on:
// a cryptographic digest is stable across process runs and platforms,
// which a language's built-in hash (randomized per-process in Go) is
// not.
func stableDigest(data []byte) uint64 {
	sum := sha256.Sum256(data)
	return binary.LittleEndian.Uint64(sum[:8])
}

// HashPath derives a slot id from its dotted state path.
func HashPath(path string) uint64 {
	return stableDigest([]byte(path))
}

// Hash computes the descriptor's stable type hash. The descriptor tree
// is walked in its own canonical order (fields and variants are already
// ordered slices, not maps) and encoded with msgpack to get a
// deterministic byte representation before hashing. msgpack writes each
// Go struct as a map in field-declaration order, and Descriptor holds no
// Go maps, so the encoding never depends on map iteration order.
func (d *Descriptor) Hash() uint64 {
	data, err := msgpack.Marshal(d)
	if err != nil {
		// Descriptor trees are built entirely from this package's own
		// constructors; a marshal failure indicates a nil pointer cycle
		// bug in caller code, not a recoverable runtime condition.
		panic(fmt.Sprintf("typeinfo: marshaling descriptor: %v", err))
	}
	return stableDigest(data)
}
