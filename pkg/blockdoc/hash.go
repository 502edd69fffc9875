package blockdoc

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher derives the content-equality key for a block. It must be
// deterministic for identical input within a process lifetime. Equal hashes
// are treated as equal content; collision resistance is a precondition on
// the hasher, not something the document model defends against.
type Hasher func(content string) string

// DefaultHasher hashes content with SHA-256 and returns the hex digest.
func DefaultHasher(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
