// Package storage persists encoded records as files.
//
// Every storage key maps to a FileId, the first 16 bytes of SHA-256(key)
// in lowercase hex. A save directory holds:
//
//	<prefix><FileId><ext>              record: IV ‖ ciphertext, or the encoding
//	<FileId>.hash                      hex SHA-256(encoding ‖ salt)
//	manifest.json or .manifest/        FileId → key index
//	backups/<FileId>-<ULID><ext>       previous versions of a record
//	backups/<FileId>-<ULID>.hash
//
// All writes go through a temp file and a rename, so a crash leaves either
// the old or the new content. The record and its sidecar are two renames;
// a crash between them shows up as an integrity mismatch on the next load.
package storage
