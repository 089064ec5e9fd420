// Package hash provides hashing utilities.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256 computes the SHA256 hash of data and returns it as a hex string.
func SHA256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SHA256String computes the SHA256 hash of a string.
func SHA256String(s string) string {
	return SHA256([]byte(s))
}

// SHA256Short returns the first n characters of a SHA256 hash.
func SHA256Short(data []byte, n int) string {
	h := SHA256(data)
	if n > len(h) {
		return h
	}
	return h[:n]
}

// Key builds a deterministic cache key from parts. Parts are joined
// with a separator that cannot appear in the values, so ("ab","c")
// and ("a","bc") never collide.
func Key(parts ...string) string {
	return SHA256String(strings.Join(parts, "\x1f"))
}

// RunID derives a short run identifier from a seed string.
func RunID(seed string) string {
	return SHA256Short([]byte(seed), 12)
}
