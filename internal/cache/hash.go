package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash keys a cache row by the exact bytes of the source file.
// A plain hash, not a secrecy primitive, so stdlib crypto/sha256 needs
// no third-party replacement.
func ContentHash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
