package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashInviteCode digests a raw invite code for storage and lookup.
// Codes are compared only as hashes, never as plaintext.
func HashInviteCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
