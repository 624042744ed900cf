// Package digest computes the content digests that bundle manifests declare.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Algorithm names the hash agreed with bundle producers.
const Algorithm = "sha256"

// Size is the length of a digest in hex characters.
const Size = sha256.Size * 2

// Valid reports whether s has the shape of a digest produced by Sum: Size
// lowercase hex characters.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Sum returns the lowercase hex SHA-256 of data. Empty input is valid.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
