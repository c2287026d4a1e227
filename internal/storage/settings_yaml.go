package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"clickmate/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	MinIntervalMs          int     `yaml:"min_interval_ms"`
	MaxIntervalMs          int     `yaml:"max_interval_ms"`
	PauseAfterInputSeconds float64 `yaml:"pause_after_input_seconds"`
	RestrictToApp          bool    `yaml:"restrict_to_app"`
	AllowedAppID           string  `yaml:"allowed_app_id"`
	Autostart              bool    `yaml:"autostart"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return settings, err
	}
	return readSettings(configPath, settings)
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}
	return writeSettings(configPath, settings)
}

func readSettings(configPath string, settings preferences.Settings) (preferences.Settings, error) {
	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

func writeSettings(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		MinIntervalMs:          int(settings.MinInterval / time.Millisecond),
		MaxIntervalMs:          int(settings.MaxInterval / time.Millisecond),
		PauseAfterInputSeconds: settings.PauseAfterInput.Seconds(),
		RestrictToApp:          settings.RestrictToApp,
		AllowedAppID:           settings.AllowedAppID,
		Autostart:              settings.Autostart,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.MinIntervalMs >= 1 {
		settings.MinInterval = time.Duration(fileData.MinIntervalMs) * time.Millisecond
	}
	if fileData.MaxIntervalMs >= 1 {
		settings.MaxInterval = time.Duration(fileData.MaxIntervalMs) * time.Millisecond
	}
	if settings.MaxInterval < settings.MinInterval {
		settings.MaxInterval = settings.MinInterval
	}
	if fileData.PauseAfterInputSeconds > 0 {
		settings.PauseAfterInput = time.Duration(fileData.PauseAfterInputSeconds * float64(time.Second))
	}

	settings.RestrictToApp = fileData.RestrictToApp
	settings.AllowedAppID = fileData.AllowedAppID
	settings.Autostart = fileData.Autostart
}
