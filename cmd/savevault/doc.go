// Command savevault inspects and manages a SaveVault save directory.
//
// Usage:
//
//	savevault keys
//	savevault show player_progress_slot_1
//	savevault verify -o json
//	savevault restore game_settings
//	savevault config show
//
// The save directory and cipher settings come from the same config.yaml
// the library reads; --config and --dir override them.
package main
