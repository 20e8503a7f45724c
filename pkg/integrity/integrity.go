// Package integrity computes and checks the salted digests stored beside
// each record.
//
// The digest is lowercase hex SHA-256 over the record bytes followed by the
// UTF-8 salt. It detects accidental or casual modification of a record; it
// is not a MAC, since anyone who knows the salt can recompute it.
package integrity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Verifier hashes records with a fixed salt. The zero value uses no salt.
type Verifier struct {
	salt []byte
}

// New returns a Verifier using salt.
func New(salt string) *Verifier {
	return &Verifier{salt: []byte(salt)}
}

// ComputeHash returns hex(SHA-256(data || salt)).
func (v *Verifier) ComputeHash(data []byte) string {
	h := sha256.New()
	h.Write(data)
	h.Write(v.salt)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether expectedHash matches data. Surrounding whitespace
// and letter case in expectedHash are ignored.
//
// Uses constant-time comparison.
func (v *Verifier) Verify(data []byte, expectedHash string) bool {
	expected := strings.ToLower(strings.TrimSpace(expectedHash))
	actual := v.ComputeHash(data)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}
