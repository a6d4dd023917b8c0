package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Algorithm selects the digest used for chunk hashing
type Algorithm string

const (
	// AlgorithmXXHash is the fast non-cryptographic default (64-bit xxHash)
	AlgorithmXXHash Algorithm = "xxhash"
	// AlgorithmSHA256 is the opt-in collision-resistant digest
	AlgorithmSHA256 Algorithm = "sha256"
)

// DigestSize is the fixed width of every ChunkHash digest
const DigestSize = 32

// ParseAlgorithm converts a configuration string to an Algorithm
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case AlgorithmXXHash, "fast", "xxh64":
		return AlgorithmXXHash, nil
	case AlgorithmSHA256, "cryptographic", "crypto":
		return AlgorithmSHA256, nil
	default:
		return "", fmt.Errorf("%w: unknown hash algorithm %q", ErrInvalidConfiguration, s)
	}
}

// Size returns the number of significant digest bytes for the algorithm
func (a Algorithm) Size() int {
	switch a {
	case AlgorithmXXHash:
		return 8
	case AlgorithmSHA256:
		return 32
	default:
		return 0
	}
}

// Validate checks if the algorithm is one of the known digests
func (a Algorithm) Validate() error {
	if a.Size() == 0 {
		return fmt.Errorf("%w: unknown hash algorithm %q", ErrInvalidConfiguration, string(a))
	}
	return nil
}

// ChunkHash is an algorithm-tagged, fixed-width digest of a chunk's content.
// It is comparable and safe to use as a map key.
type ChunkHash struct {
	Algorithm Algorithm
	Digest    [DigestSize]byte
}

// Bytes returns the significant digest bytes
func (h ChunkHash) Bytes() []byte {
	return h.Digest[:h.Algorithm.Size()]
}

// IsZero reports whether the hash was never computed
func (h ChunkHash) IsZero() bool {
	return h == ChunkHash{}
}

// String returns "<algorithm>:<hex digest>"
func (h ChunkHash) String() string {
	return string(h.Algorithm) + ":" + hex.EncodeToString(h.Bytes())
}
