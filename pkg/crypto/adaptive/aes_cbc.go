package adaptive

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"

	"github.com/yndnr/savevault-go/pkg/errs"
)

// AESCBC implements AES-CBC with PKCS#7 padding. Output is IV || ciphertext.
//
// CBC carries no authentication tag; pair it with the integrity sidecar to
// detect tampering.
type AESCBC struct {
	block cipher.Block
}

// NewAESCBC creates a new AES-CBC cipher.
//
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func NewAESCBC(key []byte) (*AESCBC, error) {
	if err := checkAESKey(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.ErrInvalidKeySize.Wrap(err)
	}
	return &AESCBC{block: block}, nil
}

// Type returns the cipher type.
func (c *AESCBC) Type() CipherType {
	return CipherAESCBC
}

// NonceSize returns the IV size in bytes.
func (c *AESCBC) NonceSize() int {
	return aes.BlockSize
}

// Overhead returns the maximum padding added to the plaintext.
func (c *AESCBC) Overhead() int {
	return aes.BlockSize
}

// Encrypt pads and encrypts plaintext. additionalData is ignored.
func (c *AESCBC) Encrypt(plaintext, _ []byte) ([]byte, error) {
	iv, err := randomBytes(aes.BlockSize)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return out, nil
}

// Decrypt decrypts and unpads ciphertext. additionalData is ignored.
func (c *AESCBC) Decrypt(ciphertext, _ []byte) ([]byte, error) {
	if len(ciphertext) < aes.BlockSize {
		return nil, errs.ErrCiphertextTooShort.WithDetailsf("%d bytes", len(ciphertext))
	}
	body := ciphertext[aes.BlockSize:]
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return nil, errs.ErrDecryptionFailed.WithDetailsf("ciphertext length %d is not a positive multiple of the block size", len(body))
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(c.block, ciphertext[:aes.BlockSize]).CryptBlocks(plain, body)
	return pkcs7Unpad(plain, aes.BlockSize)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+n)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errs.ErrDecryptionFailed.WithDetails("bad padding")
	}
	pad := bytes.Repeat([]byte{byte(n)}, n)
	if subtle.ConstantTimeCompare(data[len(data)-n:], pad) != 1 {
		return nil, errs.ErrDecryptionFailed.WithDetails("bad padding")
	}
	return data[:len(data)-n], nil
}
