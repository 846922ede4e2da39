package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey returns a fixed-width hex digest safe for cache keys and file paths.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
