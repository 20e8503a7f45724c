package adaptive

import (
	"crypto/rand"
	"io"
	"runtime"

	"github.com/yndnr/savevault-go/pkg/errs"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESCBC   CipherType = "aes-cbc"
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// Types lists every supported cipher type.
func Types() []CipherType {
	return []CipherType{CipherAESCBC, CipherAESGCM, CipherChaCha20}
}

// Cipher encrypts and decrypts whole records.
type Cipher interface {
	// Type returns the cipher type.
	Type() CipherType

	// Encrypt encrypts plaintext with additional data.
	Encrypt(plaintext, additionalData []byte) ([]byte, error)

	// Decrypt decrypts ciphertext with additional data.
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)

	// NonceSize returns the nonce or IV size in bytes.
	NonceSize() int

	// Overhead returns the maximum bytes added beyond the nonce.
	Overhead() int
}

// New creates a new authenticated cipher with the given key.
//
// It automatically selects the optimal algorithm based on hardware.
func New(key []byte) (Cipher, error) {
	if hasAESNI() {
		return NewAESGCM(key)
	}
	return NewChaCha20(key)
}

// NewWithType creates a cipher of the specified type.
func NewWithType(key []byte, cipherType CipherType) (Cipher, error) {
	switch cipherType {
	case CipherAESCBC:
		return NewAESCBC(key)
	case CipherAESGCM:
		return NewAESGCM(key)
	case CipherChaCha20:
		return NewChaCha20(key)
	default:
		return nil, errs.ErrUnknownAlgorithm.WithDetails(string(cipherType))
	}
}

// hasAESNI checks if AES-NI hardware acceleration is available.
// On amd64 and arm64, Go's crypto/aes uses hardware acceleration when available.
func hasAESNI() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}

// randomBytes returns n bytes from crypto/rand.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, errs.ErrEncryptionFailed.WithDetails("read random nonce").Wrap(err)
	}
	return b, nil
}
