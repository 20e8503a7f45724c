// Package adaptive provides the record encryption used by SaveVault.
//
// Supported Algorithms:
//
//   - AES-CBC: PKCS#7 padded, random 16-byte IV prefix (default, matches the
//     historical on-disk format)
//   - AES-GCM: authenticated, preferred when hardware AES support is available
//   - ChaCha20-Poly1305: authenticated fallback for systems without AES-NI
//
// Every cipher prefixes its output with a fresh random IV or nonce, so
// encrypting the same plaintext twice never yields the same bytes.
//
// Keys are derived from a pass-phrase with DeriveKey, either by the legacy
// SHA-256 stretch or by Argon2id over a salt.
//
// Usage:
//
//	key, err := adaptive.DeriveKey(passphrase, 32, adaptive.KDFSHA256, nil)
//	c, err := adaptive.NewWithType(key, adaptive.CipherAESCBC)
//	encrypted, err := c.Encrypt(plaintext, nil)
//	plaintext, err := c.Decrypt(encrypted, nil)
package adaptive
