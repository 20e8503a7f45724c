// Package autosave periodically saves registered live values.
//
// A Scheduler holds (key, reference) entries. The first registration
// starts a single background loop; each tick saves every entry through
// the Saver while auto-save is enabled, optionally throttled by a token
// bucket. Entries live in memory only.
package autosave
