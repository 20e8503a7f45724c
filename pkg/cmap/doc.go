// Package cmap provides a concurrent string-keyed map.
//
// Keys are spread over a power-of-two number of shards by their murmur3
// hash and each shard has its own RWMutex. Snapshots (Keys, Items) are
// sorted so callers that walk them, such as the auto-save loop, do so in
// a stable order. Range and the snapshots lock one shard at a time and
// see a per-shard consistent view only.
//
//	m := cmap.New[any]()
//	m.Set("player_progress_slot_1", &progress)
//	if old, replaced := m.Swap("game_settings", &settings); replaced {
//		...
//	}
package cmap
