package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/yndnr/savevault-go/pkg/errs"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Encryption.Enabled {
		t.Error("encryption should be enabled by default")
	}
	if cfg.Encryption.Algorithm != DefaultAlgorithm {
		t.Errorf("Algorithm = %q, want %q", cfg.Encryption.Algorithm, DefaultAlgorithm)
	}
	if cfg.Encryption.KeySize != 32 || cfg.Encryption.IVSize != 16 {
		t.Errorf("KeySize/IVSize = %d/%d, want 32/16", cfg.Encryption.KeySize, cfg.Encryption.IVSize)
	}
	if cfg.Encryption.Passphrase == "" || cfg.Integrity.Salt == "" {
		t.Error("default passphrase and salt must be non-empty")
	}
	if cfg.Serialization.Format != "binary" {
		t.Errorf("Format = %q, want binary", cfg.Serialization.Format)
	}
	if cfg.Storage.FileExtension != ".sav" {
		t.Errorf("FileExtension = %q, want .sav", cfg.Storage.FileExtension)
	}
	if cfg.Storage.CacheSizeMB != 50 {
		t.Errorf("CacheSizeMB = %d, want 50", cfg.Storage.CacheSizeMB)
	}
	if cfg.AutoSave.Enabled {
		t.Error("autosave should be disabled by default")
	}
	if cfg.AutoSave.Interval != 300 {
		t.Errorf("Interval = %v, want 300", cfg.AutoSave.Interval)
	}
	if !cfg.Backup.Enabled || cfg.Backup.MaxCount != 3 {
		t.Errorf("Backup = %+v, want enabled with 3", cfg.Backup)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   *errs.DomainError
	}{
		{"key size", func(c *Config) { c.Encryption.KeySize = 20 }, errs.ErrInvalidKeySize},
		{"iv size", func(c *Config) { c.Encryption.IVSize = 12 }, errs.ErrInvalidIVSize},
		{"empty passphrase", func(c *Config) { c.Encryption.Passphrase = "" }, errs.ErrEmptyPassphrase},
		{"empty salt", func(c *Config) { c.Integrity.Salt = "" }, errs.ErrEmptySalt},
		{"unknown algorithm", func(c *Config) { c.Encryption.Algorithm = "rot13" }, errs.ErrUnknownAlgorithm},
		{"chacha key size", func(c *Config) {
			c.Encryption.Algorithm = "chacha20-poly1305"
			c.Encryption.KeySize = 16
		}, errs.ErrInvalidKeySize},
		{"unknown kdf", func(c *Config) { c.Encryption.KDF = "md5" }, errs.ErrUnknownKDF},
		{"unknown format", func(c *Config) { c.Serialization.Format = "xml" }, errs.ErrUnknownFormat},
		{"unknown manifest", func(c *Config) { c.Storage.Manifest = "sqlite" }, errs.ErrUnknownManifest},
		{"cache size", func(c *Config) { c.Storage.CacheSizeMB = 0 }, errs.ErrInvalidConfig},
		{"backup count", func(c *Config) { c.Backup.MaxCount = 0 }, errs.ErrInvalidConfig},
		{"interval", func(c *Config) {
			c.AutoSave.Enabled = true
			c.AutoSave.Interval = 0
		}, errs.ErrInvalidInterval},
		{"negative throttle", func(c *Config) { c.AutoSave.MaxSavesPerSecond = -1 }, errs.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %s", err, tt.want.Code)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Encryption.KeySize = 7
	cfg.Integrity.Salt = ""
	cfg.Serialization.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []*errs.DomainError{errs.ErrInvalidKeySize, errs.ErrEmptySalt, errs.ErrUnknownFormat} {
		if !errors.Is(err, want) {
			t.Errorf("Validate() missing %s: %v", want.Code, err)
		}
	}
}

func TestValidate_DisabledAutoSaveIgnoresInterval(t *testing.T) {
	cfg := Default()
	cfg.AutoSave.Interval = 0
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Encryption.Passphrase = "super-secret-passphrase"
	cfg.Integrity.Salt = "pepper-and-salt"

	sanitized := Sanitize(cfg)

	if cfg.Encryption.Passphrase != "super-secret-passphrase" {
		t.Error("original config should not be modified")
	}
	if sanitized.Encryption.Passphrase == cfg.Encryption.Passphrase {
		t.Error("passphrase should be masked")
	}
	if sanitized.Integrity.Salt == cfg.Integrity.Salt {
		t.Error("salt should be masked")
	}
	if !strings.HasPrefix(sanitized.Encryption.Passphrase, "su") || !strings.HasSuffix(sanitized.Encryption.Passphrase, "se") {
		t.Errorf("masked passphrase = %q, want first and last two characters kept", sanitized.Encryption.Passphrase)
	}
	if len(sanitized.Encryption.Passphrase) != len(cfg.Encryption.Passphrase) {
		t.Errorf("masked length = %d, want %d", len(sanitized.Encryption.Passphrase), len(cfg.Encryption.Passphrase))
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "****"},
		{"abc", "****"},
		{"abcd", "****"},
		{"abcde", "ab*de"},
		{"secret-value", "se********ue"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()
	cp.Storage.Dir = "/elsewhere"
	if cfg.Storage.Dir == "/elsewhere" {
		t.Error("Clone() shares state with the original")
	}
}
