package storage

import (
	"log/slog"

	"github.com/yndnr/savevault-go/internal/storage/index"
	"github.com/yndnr/savevault-go/internal/telemetry/metric"
	"github.com/yndnr/savevault-go/pkg/codec"
	"github.com/yndnr/savevault-go/pkg/config"
	"github.com/yndnr/savevault-go/pkg/crypto/adaptive"
	"github.com/yndnr/savevault-go/pkg/integrity"
)

// Open builds the provider described by cfg. Validation problems are
// logged, not enforced; components that cannot be built make Open fail.
func Open(cfg *config.Config, logger *slog.Logger, metrics *metric.Registry) (*FileProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := config.Validate(cfg); err != nil {
		logger.Warn("configuration has problems", "error", err)
	}

	dir := cfg.Storage.Dir
	if dir == "" {
		d, err := config.DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	c, err := codec.New(cfg.Serialization.Format)
	if err != nil {
		return nil, err
	}

	var ciph adaptive.Cipher
	if enc := cfg.Encryption; enc.Enabled {
		ciph, err = adaptive.NewFromPassphrase(
			enc.Passphrase,
			enc.KeySize,
			adaptive.CipherType(enc.Algorithm),
			adaptive.KDF(enc.KDF),
			[]byte(cfg.Integrity.Salt),
		)
		if err != nil {
			return nil, err
		}
	}

	var verifier *integrity.Verifier
	if cfg.Integrity.Enabled {
		verifier = integrity.New(cfg.Integrity.Salt)
	}

	idx, err := index.Open(cfg.Storage.Manifest, dir, index.Options{
		CacheSizeMB: cfg.Storage.CacheSizeMB,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	p, err := NewFileProvider(Options{
		Dir:            dir,
		Prefix:         cfg.Storage.FilePrefix,
		Extension:      cfg.Storage.FileExtension,
		Codec:          c,
		Cipher:         ciph,
		Verifier:       verifier,
		Index:          idx,
		MaxRecordBytes: int64(cfg.Storage.CacheSizeMB) << 20,
		Backup: BackupPolicy{
			Enabled:  cfg.Backup.Enabled,
			MaxCount: cfg.Backup.MaxCount,
		},
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		_ = idx.Close()
		return nil, err
	}

	logger.Debug("storage provider ready",
		"dir", dir,
		"format", c.Name(),
		"encrypted", ciph != nil,
		"integrity", verifier != nil,
		"manifest", cfg.Storage.Manifest)
	return p, nil
}
