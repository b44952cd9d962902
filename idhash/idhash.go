// Package idhash derives stable numeric identifiers for named event
// families and subtypes, so publisher-defined event packages can compute a
// registry key from a human-readable scope and name instead of coordinating
// on hand-assigned integers.
package idhash

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ID returns a 64-bit hash of scope and name, stable across process runs
// (xxhash has no per-process seed). scope and name are hashed as distinct
// fields — ID("a", "bc") and ID("ab", "c") do not collide by construction,
// since the varint-encoded length of scope (padded to 8 bytes) is hashed
// ahead of scope, fixing where scope ends and name begins.
func ID(scope, name []byte) uint64 {
	d := xxhash.New()
	var lenBuf [8]byte
	putUvarint(lenBuf[:], uint64(len(scope)))
	d.Write(lenBuf[:])
	d.Write(scope)
	d.Write(name)
	return d.Sum64()
}

// IDString is the string-argument convenience form of ID.
func IDString(scope, name string) uint64 {
	return ID([]byte(scope), []byte(name))
}

// IDUint combines a scope string with an integer discriminant, useful when
// subtypes are already enumerated (e.g. a family's nth bit) but a package
// still wants a single collision-resistant key to log or export as a
// metric label.
func IDUint(scope string, n uint64) uint64 {
	return IDString(scope, strconv.FormatUint(n, 10))
}

func putUvarint(buf []byte, v uint64) {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
}
