// Package digest provides the canonical encoding and hashing functions the
// blockchain relies on. Every hash in the system is produced here so a mining
// client and the sealing node agree on the exact bytes.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Version identifies the canonical encoding rules. Any change to field names,
// field order, or value formatting must bump this value.
const Version = 1

// ZeroHash represents a hash code of zeros. It is the previous hash recorded
// by the genesis block.
var ZeroHash = strings.Repeat("0", sha256.Size*2)

// =============================================================================

// Canonical returns the canonical byte representation of the value. The value
// is expected to be a struct that declares its fields in canonical order, the
// JSON encoder preserves struct field order. Non-finite floats are rejected by
// the encoder and returned as an error.
func Canonical(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Hash returns the hex encoded SHA-256 digest of the data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashValue returns a unique string for the value. If the value can't be
// encoded the ZeroHash is returned.
func HashValue(value any) string {
	data, err := Canonical(value)
	if err != nil {
		return ZeroHash
	}

	return Hash(data)
}

// HasZeroPrefix reports whether the hex hash starts with n zero characters.
func HasZeroPrefix(hash string, n uint) bool {
	if int(n) > len(hash) {
		return false
	}

	return hash[:n] == ZeroHash[:n]
}
