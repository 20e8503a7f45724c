package adaptive

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"

	"github.com/yndnr/savevault-go/pkg/errs"
)

// KDF names a pass-phrase to key derivation function.
type KDF string

const (
	// KDFSHA256 hashes the pass-phrase once and truncates or repeats the
	// digest to the key size. It is fast and unsalted, kept so records written
	// by older releases stay readable.
	KDFSHA256 KDF = "sha256"

	// KDFArgon2id derives the key with Argon2id over the salt.
	KDFArgon2id KDF = "argon2id"
)

// Argon2 parameters for key derivation from passphrase.
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// KDFs lists every supported key derivation function.
func KDFs() []KDF {
	return []KDF{KDFSHA256, KDFArgon2id}
}

// DeriveKey turns passphrase into a key of size bytes.
func DeriveKey(passphrase string, size int, kdf KDF, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, errs.ErrEmptyPassphrase
	}
	if size <= 0 {
		return nil, errs.ErrInvalidKeySize.WithDetailsf("%d", size)
	}

	switch kdf {
	case KDFSHA256, "":
		return stretchSHA256(passphrase, size), nil
	case KDFArgon2id:
		if len(salt) == 0 {
			return nil, errs.ErrKeyDerivation.WithDetails("argon2id requires a salt")
		}
		return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, uint32(size)), nil
	default:
		return nil, errs.ErrUnknownKDF.WithDetails(string(kdf))
	}
}

func stretchSHA256(passphrase string, size int) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	key := make([]byte, size)
	for i := range key {
		key[i] = sum[i%len(sum)]
	}
	return key
}

// NewFromPassphrase derives a key and builds a cipher of cipherType.
func NewFromPassphrase(passphrase string, keySize int, cipherType CipherType, kdf KDF, salt []byte) (Cipher, error) {
	key, err := DeriveKey(passphrase, keySize, kdf, salt)
	if err != nil {
		return nil, err
	}
	return NewWithType(key, cipherType)
}
