package config

import (
	"errors"
	"slices"

	"github.com/yndnr/savevault-go/pkg/codec"
	"github.com/yndnr/savevault-go/pkg/crypto/adaptive"
	"github.com/yndnr/savevault-go/pkg/errs"
)

// Manifest backends.
const (
	ManifestFile   = "file"
	ManifestBadger = "badger"
	ManifestNone   = "none"
)

var validKeySizes = []int{16, 24, 32}

// Validate checks the configuration and returns every problem found,
// joined with errors.Join. A nil result means cfg is usable.
func Validate(cfg *Config) error {
	var problems []error
	problems = append(problems, validateEncryption(&cfg.Encryption)...)
	problems = append(problems, validateIntegrity(&cfg.Integrity)...)
	problems = append(problems, validateSerialization(&cfg.Serialization)...)
	problems = append(problems, validateStorage(&cfg.Storage)...)
	problems = append(problems, validateBackup(&cfg.Backup)...)
	problems = append(problems, validateAutoSave(&cfg.AutoSave)...)
	return errors.Join(problems...)
}

func validateEncryption(cfg *EncryptionSection) []error {
	var problems []error

	if !slices.Contains(validKeySizes, cfg.KeySize) {
		problems = append(problems, errs.ErrInvalidKeySize.WithDetailsf("encryption.key_size must be 16, 24 or 32, got %d", cfg.KeySize))
	}
	if cfg.IVSize != DefaultIVSize {
		problems = append(problems, errs.ErrInvalidIVSize.WithDetailsf("encryption.iv_size must be 16, got %d", cfg.IVSize))
	}
	if cfg.Passphrase == "" {
		problems = append(problems, errs.ErrEmptyPassphrase.WithDetails("encryption.passphrase is required"))
	}

	algo := adaptive.CipherType(cfg.Algorithm)
	switch {
	case !slices.Contains(adaptive.Types(), algo):
		problems = append(problems, errs.ErrUnknownAlgorithm.WithDetailsf("encryption.algorithm %q", cfg.Algorithm))
	case algo == adaptive.CipherChaCha20 && cfg.KeySize != 32:
		problems = append(problems, errs.ErrInvalidKeySize.WithDetails("chacha20-poly1305 requires encryption.key_size 32"))
	}

	if !slices.Contains(adaptive.KDFs(), adaptive.KDF(cfg.KDF)) {
		problems = append(problems, errs.ErrUnknownKDF.WithDetailsf("encryption.kdf %q", cfg.KDF))
	}
	return problems
}

func validateIntegrity(cfg *IntegritySection) []error {
	if cfg.Salt == "" {
		return []error{errs.ErrEmptySalt.WithDetails("integrity.salt is required")}
	}
	return nil
}

func validateSerialization(cfg *SerializationSection) []error {
	if !slices.Contains(codec.Formats(), cfg.Format) {
		return []error{errs.ErrUnknownFormat.WithDetailsf("serialization.format %q", cfg.Format)}
	}
	return nil
}

func validateStorage(cfg *StorageSection) []error {
	var problems []error
	if cfg.CacheSizeMB < 1 {
		problems = append(problems, errs.ErrInvalidConfig.WithDetails("storage.cache_size_mb must be at least 1"))
	}
	switch cfg.Manifest {
	case ManifestFile, ManifestBadger, ManifestNone:
	default:
		problems = append(problems, errs.ErrUnknownManifest.WithDetailsf("storage.manifest %q", cfg.Manifest))
	}
	return problems
}

func validateBackup(cfg *BackupSection) []error {
	if cfg.Enabled && cfg.MaxCount < 1 {
		return []error{errs.ErrInvalidConfig.WithDetails("backup.max_count must be at least 1 when backups are enabled")}
	}
	return nil
}

func validateAutoSave(cfg *AutoSaveSection) []error {
	var problems []error
	if cfg.Enabled && cfg.Interval <= 0 {
		problems = append(problems, errs.ErrInvalidInterval.WithDetailsf("autosave.interval must be positive, got %v", cfg.Interval))
	}
	if cfg.MaxSavesPerSecond < 0 {
		problems = append(problems, errs.ErrInvalidConfig.WithDetails("autosave.max_saves_per_second must not be negative"))
	}
	return problems
}
