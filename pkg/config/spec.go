package config

// Config is the complete SaveVault configuration.
type Config struct {
	Encryption    EncryptionSection    `koanf:"encryption" yaml:"encryption" json:"encryption"`
	Integrity     IntegritySection     `koanf:"integrity" yaml:"integrity" json:"integrity"`
	Serialization SerializationSection `koanf:"serialization" yaml:"serialization" json:"serialization"`
	Storage       StorageSection       `koanf:"storage" yaml:"storage" json:"storage"`
	Backup        BackupSection        `koanf:"backup" yaml:"backup" json:"backup"`
	AutoSave      AutoSaveSection      `koanf:"autosave" yaml:"autosave" json:"autosave"`
	Log           LogSection           `koanf:"log" yaml:"log" json:"log"`
}

// EncryptionSection configures record encryption.
type EncryptionSection struct {
	Enabled bool `koanf:"enabled" yaml:"enabled" json:"enabled"`

	// Algorithm is one of aes-cbc, aes-gcm, chacha20-poly1305.
	Algorithm string `koanf:"algorithm" yaml:"algorithm" json:"algorithm"`

	// Passphrase is the key material the cipher key is derived from.
	Passphrase string `koanf:"passphrase" yaml:"passphrase" json:"passphrase"`

	// KeySize is the derived key length in bytes: 16, 24 or 32.
	KeySize int `koanf:"key_size" yaml:"key_size" json:"key_size"`

	// IVSize must be 16. Kept for compatibility with older configuration files.
	IVSize int `koanf:"iv_size" yaml:"iv_size" json:"iv_size"`

	// KDF is sha256 or argon2id. argon2id salts with Integrity.Salt.
	KDF string `koanf:"kdf" yaml:"kdf" json:"kdf"`
}

// IntegritySection configures the sidecar hash.
type IntegritySection struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled" json:"enabled"`
	Salt    string `koanf:"salt" yaml:"salt" json:"salt"`
}

// SerializationSection selects the codec.
type SerializationSection struct {
	// Format is binary, tagged-text or compact-text.
	Format string `koanf:"format" yaml:"format" json:"format"`
}

// StorageSection configures file naming and the key manifest.
type StorageSection struct {
	// Dir is the save directory. Empty means <user config dir>/savevault/data.
	Dir           string `koanf:"dir" yaml:"dir" json:"dir"`
	FilePrefix    string `koanf:"file_prefix" yaml:"file_prefix" json:"file_prefix"`
	FileExtension string `koanf:"file_extension" yaml:"file_extension" json:"file_extension"`

	// CacheSizeMB caps the size of a single record read from disk and sizes
	// the badger manifest block cache.
	CacheSizeMB int `koanf:"cache_size_mb" yaml:"cache_size_mb" json:"cache_size_mb"`

	// Manifest is file, badger or none.
	Manifest string `koanf:"manifest" yaml:"manifest" json:"manifest"`
}

// BackupSection configures copies taken before a record is overwritten.
type BackupSection struct {
	Enabled  bool `koanf:"enabled" yaml:"enabled" json:"enabled"`
	MaxCount int  `koanf:"max_count" yaml:"max_count" json:"max_count"`
}

// AutoSaveSection configures the auto-save scheduler.
type AutoSaveSection struct {
	Enabled bool `koanf:"enabled" yaml:"enabled" json:"enabled"`

	// Interval is the time between ticks in seconds.
	Interval float64 `koanf:"interval" yaml:"interval" json:"interval"`

	// MaxSavesPerSecond throttles saves within a tick. 0 disables throttling.
	MaxSavesPerSecond float64 `koanf:"max_saves_per_second" yaml:"max_saves_per_second" json:"max_saves_per_second"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"`

	// Verbose forces debug level.
	Verbose bool `koanf:"verbose" yaml:"verbose" json:"verbose"`
}

// Sections lists the top-level keys of Config.
func Sections() []string {
	return []string{"encryption", "integrity", "serialization", "storage", "backup", "autosave", "log"}
}
