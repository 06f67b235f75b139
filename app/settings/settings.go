// Package settings loads application settings from a YAML file overlaid on
// built-in defaults.
package settings

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// settingsEnvVar overrides the settings file location when set.
const settingsEnvVar = "CRATEVIEW_SETTINGS"

// GetEffectiveSettings returns the effective settings (defaults overlaid with
// file overrides if any). If anything goes wrong reading or parsing the file,
// it returns defaults.
func GetEffectiveSettings() Settings {
	settings := defaultSettings
	path, err := settingsFilePath()
	if err != nil {
		return settings
	}
	if _, err := os.Stat(path); err != nil {
		// no file or other stat error -> return defaults
		return settings
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return settings
	}
	return Overlay(settings, b)
}

// Overlay applies YAML overrides on top of base, ignoring unknown keys and
// values of the wrong type.
func Overlay(base Settings, b []byte) Settings {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return base
	}
	if v, ok := m["items_per_page"]; ok {
		if vi, oki := v.(int); oki && vi > 0 {
			base.ItemsPerPage = vi
		}
	}
	if v, ok := m["enable_view_cache"]; ok {
		if vb, okb := v.(bool); okb {
			base.EnableViewCache = vb
		}
	}
	if v, ok := m["cache_size_limit_mb"]; ok {
		if vi, oki := v.(int); oki && vi > 0 {
			base.CacheSizeLimitMB = vi
		}
	}
	if v, ok := m["max_upload_size_mb"]; ok {
		if vi, oki := v.(int); oki && vi > 0 {
			base.MaxUploadSizeMB = vi
		}
	}
	if v, ok := m["log_level"]; ok {
		if vs, oks := v.(string); oks && vs != "" {
			base.LogLevel = vs
		}
	}
	return base
}

// Save writes the settings to the settings file, creating its directory if
// needed.
func Save(s Settings) error {
	path, err := settingsFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func settingsFilePath() (string, error) {
	if p := os.Getenv(settingsEnvVar); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "crateview", "settings.yml"), nil
}
