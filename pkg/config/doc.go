// Package config defines the SaveVault settings aggregate.
//
// A Config is a plain value: build one with Default, adjust it, check it
// with Validate and hand it to savevault.NewFromConfig. The Manager adds the
// process-wide behaviour: the configuration is loaded lazily from a YAML
// file on first access (creating the file with defaults if it is missing),
// written back only by an explicit Save or Reset, and optionally reloaded
// when the file changes on disk.
//
// Example config.yaml:
//
//	encryption:
//	  enabled: true
//	  algorithm: aes-cbc
//	  passphrase: change-me
//	  key_size: 32
//	  iv_size: 16
//	  kdf: sha256
//	integrity:
//	  enabled: true
//	  salt: change-me-too
//	serialization:
//	  format: binary
//	storage:
//	  dir: ""
//	  file_prefix: ""
//	  file_extension: .sav
//	  cache_size_mb: 50
//	  manifest: file
//	backup:
//	  enabled: true
//	  max_count: 3
//	autosave:
//	  enabled: false
//	  interval: 300
//	  max_saves_per_second: 0
//	log:
//	  level: info
//	  format: text
//	  verbose: false
package config
