// Package confloader layers configuration sources on top of each other
// using koanf.
//
// Priority (highest to lowest):
//
//  1. Maps loaded explicitly (command-line flags, tests)
//  2. Environment variables
//  3. The YAML configuration file
//  4. Values already present in the target struct (defaults)
//
// Environment variables are named PREFIX_SECTION_KEY. The first underscore
// after the prefix separates the section from the key, so
// SAVEVAULT_ENCRYPTION_KEY_SIZE maps to encryption.key_size.
//
// The Watcher reports writes to a configuration file so the caller can
// reload it.
package confloader
