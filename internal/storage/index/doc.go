// Package index keeps the key manifest: the mapping from a record's
// FileId back to the storage key it was saved under.
//
// Record file names are hashes, so without the manifest a directory
// listing can only report FileIds. Three backends exist:
//
//   - file: manifest.json in the save directory, rewritten atomically
//   - badger: a Badger v3 database under <dir>/.manifest
//   - none: no manifest; lookups always miss
package index
