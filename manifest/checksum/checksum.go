// Package checksum provides the hashing primitive used to derive content checksums for manifest sources.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/crytic/medusa-geth/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// ErrUnsupportedAlgorithm is returned when a checksum is requested for an unknown algorithm identifier.
var ErrUnsupportedAlgorithm = errors.New("unsupported checksum algorithm")

// hashers maps supported algorithm identifiers to constructors of their hash implementations.
var hashers = map[string]func() hash.Hash{
	"md5":       md5.New,
	"sha1":      sha1.New,
	"sha256":    sha256.New,
	"sha512":    sha512.New,
	"sha3-256":  sha3.New256,
	"keccak256": func() hash.Hash { return crypto.NewKeccakState() },
	"blake2b256": func() hash.Hash {
		// New256 only fails for keys longer than 64 bytes.
		h, _ := blake2b.New256(nil)
		return h
	},
	"xxhash64": func() hash.Hash { return xxhash.New() },
}

// Compute hashes the content with the given algorithm and returns the lower-case hex digest. Algorithm identifiers
// are case-insensitive.
func Compute(content []byte, algorithm string) (string, error) {
	newHash, ok := hashers[strings.ToLower(algorithm)]
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedAlgorithm, "'%s'", algorithm)
	}

	h := newHash()
	// Writes to a hash.Hash never return an error.
	_, _ = h.Write(content)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsSupported indicates whether the given algorithm identifier can be used with Compute.
func IsSupported(algorithm string) bool {
	_, ok := hashers[strings.ToLower(algorithm)]
	return ok
}

// SupportedAlgorithms returns the sorted list of algorithm identifiers accepted by Compute.
func SupportedAlgorithms() []string {
	algorithms := make([]string, 0, len(hashers))
	for algorithm := range hashers {
		algorithms = append(algorithms, algorithm)
	}
	sort.Strings(algorithms)
	return algorithms
}
