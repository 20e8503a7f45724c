package config

// Default configuration values.
const (
	DefaultAlgorithm  = "aes-cbc"
	DefaultPassphrase = "SaveVault_Default_SecretKey_2025"
	DefaultKeySize    = 32
	DefaultIVSize     = 16
	DefaultKDF        = "sha256"

	DefaultSalt = "SaveVault_Default_Salt_2025"

	DefaultFormat = "binary"

	DefaultFileExtension = ".sav"
	DefaultCacheSizeMB   = 50
	DefaultManifest      = "file"

	DefaultMaxBackups = 3

	DefaultAutoSaveInterval = 300.0

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Encryption: EncryptionSection{
			Enabled:    true,
			Algorithm:  DefaultAlgorithm,
			Passphrase: DefaultPassphrase,
			KeySize:    DefaultKeySize,
			IVSize:     DefaultIVSize,
			KDF:        DefaultKDF,
		},
		Integrity: IntegritySection{
			Enabled: true,
			Salt:    DefaultSalt,
		},
		Serialization: SerializationSection{
			Format: DefaultFormat,
		},
		Storage: StorageSection{
			FileExtension: DefaultFileExtension,
			CacheSizeMB:   DefaultCacheSizeMB,
			Manifest:      DefaultManifest,
		},
		Backup: BackupSection{
			Enabled:  true,
			MaxCount: DefaultMaxBackups,
		},
		AutoSave: AutoSaveSection{
			Enabled:  false,
			Interval: DefaultAutoSaveInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
