// Package auth provides API key hashing. Keys are never compared or
// logged in the clear; handlers work with the hash only.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashKey returns the SHA-256 hex digest of the key. Surrounding
// whitespace is ignored so a key pasted from a config file with a
// stray newline still matches.
func HashKey(key string) string {
	key = strings.TrimSpace(key)

	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
