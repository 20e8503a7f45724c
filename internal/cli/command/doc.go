// Package command defines the savevault CLI using urfave/cli/v2.
//
//   - root.go: application, global flags, shared helpers
//   - record.go: keys, show, verify, delete, restore, backups
//   - config.go: config show, validate, reset, path
//
// Commands talk to the storage provider directly, so unlike the library
// facade they report storage errors to the user and exit non-zero.
package command
