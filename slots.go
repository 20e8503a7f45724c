package savevault

import "strconv"

// GameSettingsKey is the key game settings are stored under.
const GameSettingsKey = "game_settings"

// PlayerProgressKey returns the key of the player progress in slot.
func PlayerProgressKey(slot int) string {
	return "player_progress_slot_" + strconv.Itoa(slot)
}

// SaveGameSettings stores settings in the default Store.
func SaveGameSettings(settings any) {
	Save(GameSettingsKey, settings)
}

// LoadGameSettings returns the stored game settings, or def.
func LoadGameSettings[T any](def T) T {
	return Load(GameSettingsKey, def)
}

// SavePlayerProgress stores progress for slot in the default Store.
func SavePlayerProgress(slot int, progress any) {
	Save(PlayerProgressKey(slot), progress)
}

// LoadPlayerProgress returns the stored progress of slot, or def.
func LoadPlayerProgress[T any](slot int, def T) T {
	return Load(PlayerProgressKey(slot), def)
}
