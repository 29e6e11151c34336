// Package hash provides the content-addressing primitive used to identify
// modules and blueprints: a 32-byte BLAKE3 digest encoded as lowercase hex.
package hash

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// Size is the digest length in bytes.
const Size = 32

// Hash is a 32-byte BLAKE3 digest.
type Hash [Size]byte

// Zero reports whether h is the all-zero digest.
func (h Hash) Zero() bool {
	return h == Hash{}
}

// Hex returns the lowercase hex encoding of h.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements fmt.Stringer.
func (h Hash) String() string {
	return h.Hex()
}

// Sum returns the BLAKE3 digest of data.
func Sum(data []byte) Hash {
	var h Hash
	digest := blake3.Sum256(data)
	copy(h[:], digest[:])
	return h
}

// ParseHash decodes a lowercase hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("hash: invalid hex %q: %w", s, err)
	}
	if len(b) != Size {
		return h, fmt.Errorf("hash: expected %d bytes, got %d", Size, len(b))
	}
	copy(h[:], b)
	return h, nil
}
