package workspace

// SettingsKey is the local store key of the preferences blob.
const SettingsKey = "settings"

// Settings are local user preferences.
type Settings struct {
	PreviewOnSelect bool   `json:"preview_on_select"`
	WordWrap        bool   `json:"word_wrap"`
	Theme           string `json:"theme"`
	FontSize        int    `json:"font_size"`
}

// DefaultSettings are used until the user saves their own.
func DefaultSettings() Settings {
	return Settings{
		PreviewOnSelect: true,
		WordWrap:        true,
		Theme:           "system",
		FontSize:        14,
	}
}

// Settings returns the saved preferences, or the defaults.
func (w *Workspace) Settings() Settings {
	if w.local == nil {
		return DefaultSettings()
	}
	s := DefaultSettings()
	ok, err := w.local.GetJSON(SettingsKey, &s)
	if err != nil {
		w.logger.Warn("failed to read settings", "error", err)
	}
	if err != nil || !ok {
		return DefaultSettings()
	}
	return s
}

// SaveSettings persists preferences.
func (w *Workspace) SaveSettings(s Settings) Result[Settings] {
	if w.local == nil {
		return Ok(s)
	}
	if err := w.local.SetJSON(SettingsKey, s); err != nil {
		return Err[Settings](err)
	}
	return Ok(s)
}
