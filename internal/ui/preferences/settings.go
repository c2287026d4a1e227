package preferences

import (
	"time"

	"clickmate/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	MinInterval     time.Duration
	MaxInterval     time.Duration
	PauseAfterInput time.Duration
	RestrictToApp   bool
	AllowedAppID    string
	Autostart       bool
}

// DefaultSettings returns default settings for ClickMate.
func DefaultSettings() Settings {
	return Settings{
		MinInterval:     4 * time.Second,
		MaxInterval:     9 * time.Second,
		PauseAfterInput: 2 * time.Second,
		RestrictToApp:   false,
		AllowedAppID:    "",
		Autostart:       false,
	}
}

// ClickerConfig converts settings to the scheduler configuration.
func (settings Settings) ClickerConfig() model.ClickerConfig {
	return model.ClickerConfig{
		MinInterval:     settings.MinInterval,
		MaxInterval:     settings.MaxInterval,
		PauseAfterInput: settings.PauseAfterInput,
		RestrictToApp:   settings.RestrictToApp,
		AllowedAppID:    settings.AllowedAppID,
	}.Normalize()
}
