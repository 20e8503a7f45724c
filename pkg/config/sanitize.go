package config

import "strings"

// Sanitize returns a copy of the config with secrets masked.
//
// This is used for logging and for the CLI config view.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg

	if sanitized.Encryption.Passphrase != "" {
		sanitized.Encryption.Passphrase = maskSecret(sanitized.Encryption.Passphrase)
	}
	if sanitized.Integrity.Salt != "" {
		sanitized.Integrity.Salt = maskSecret(sanitized.Integrity.Salt)
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
