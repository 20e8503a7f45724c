package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// FileIDLen is the length of a FileId in hex characters.
const FileIDLen = 32

// FileID returns the stable file name stem for key.
func FileID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:FileIDLen/2])
}

// IsFileID reports whether s has the shape of a FileId.
func IsFileID(s string) bool {
	if len(s) != FileIDLen {
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
