// Package checksum derives the revision tokens used for optimistic
// concurrency checks on stored documents.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum digests data with SHA-256 and returns the lowercase hex form.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
