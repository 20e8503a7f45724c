package adaptive

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/yndnr/savevault-go/pkg/errs"
)

// sealer is an AEAD record cipher. Records are written as
// nonce || Seal(plaintext), with a fresh random nonce per record.
type sealer struct {
	typ  CipherType
	aead cipher.AEAD
}

// NewAESGCM returns an AES-GCM cipher. key selects AES-128, AES-192 or
// AES-256 by its length.
func NewAESGCM(key []byte) (Cipher, error) {
	if err := checkAESKey(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.ErrInvalidKeySize.Wrap(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errs.ErrInvalidKeySize.Wrap(err)
	}
	return &sealer{typ: CipherAESGCM, aead: aead}, nil
}

// NewChaCha20 returns a ChaCha20-Poly1305 cipher. key must be 32 bytes.
func NewChaCha20(key []byte) (Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errs.ErrInvalidKeySize.WithDetailsf("chacha20-poly1305 needs a %d byte key, got %d",
			chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errs.ErrInvalidKeySize.Wrap(err)
	}
	return &sealer{typ: CipherChaCha20, aead: aead}, nil
}

func (s *sealer) Type() CipherType { return s.typ }

func (s *sealer) NonceSize() int { return s.aead.NonceSize() }

// Overhead is the authentication tag size.
func (s *sealer) Overhead() int { return s.aead.Overhead() }

func (s *sealer) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	nonce, err := randomBytes(s.aead.NonceSize())
	if err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

func (s *sealer) Decrypt(record, additionalData []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(record) < n {
		return nil, errs.ErrCiphertextTooShort.WithDetailsf("%s record of %d bytes has no room for a %d byte nonce",
			s.typ, len(record), n)
	}
	plain, err := s.aead.Open(nil, record[:n], record[n:], additionalData)
	if err != nil {
		return nil, errs.ErrDecryptionFailed.WithDetails(string(s.typ)).Wrap(err)
	}
	return plain, nil
}

func checkAESKey(key []byte) error {
	switch len(key) {
	case 16, 24, 32:
		return nil
	}
	return errs.ErrInvalidKeySize.WithDetailsf("aes key must be 16, 24 or 32 bytes, got %d", len(key))
}
