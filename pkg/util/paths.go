package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfiguredAppName can be set by the host application before any paths are
// resolved; when non-empty, EffectiveAppName() uses it for directory names.
var ConfiguredAppName string

// SetAppName sets a configured application name used for on-disk directory
// layout. Empty or whitespace-only names are ignored.
func SetAppName(name string) {
	n := strings.TrimSpace(name)
	if n == "" {
		return
	}
	ConfiguredAppName = sanitizeAppNameForPath(n)
}

// EffectiveAppName returns the configured application name, falling back to
// "discordstate" when the host never set one.
func EffectiveAppName() string {
	if n := strings.TrimSpace(ConfiguredAppName); n != "" {
		return n
	}
	return "discordstate"
}

// GetApplicationSupportPath returns the base path for configuration files using the unified OS rules:
//   - Linux/Unix:  ~/.config/<AppName>
//   - macOS:       ~/Library/Preferences/<AppName>
//   - Windows:     %APPDATA%/<AppName>
func GetApplicationSupportPath() string {
	app := EffectiveAppName()
	if dir := strings.TrimSpace(platformConfigDir(app)); dir != "" {
		return dir
	}
	// Last-resort fallback if platform resolution fails unexpectedly.
	return filepath.Join(".", "config", app)
}

// GetApplicationCachesPath returns the base path for cache files using the unified OS rules:
//   - Linux/Unix:  ~/.cache/<AppName>
//   - macOS:       ~/Library/Caches/<AppName>
//   - Windows:     %APPDATA%/<AppName>/Cache
func GetApplicationCachesPath() string {
	app := EffectiveAppName()
	if dir := strings.TrimSpace(platformCacheDir(app)); dir != "" {
		return dir
	}
	// Last-resort fallback if platform resolution fails unexpectedly.
	return filepath.Join(".", "cache", app)
}

// GetSnapshotDBPath returns the SQLite DB path for entity snapshots.
// Layout: <CachesBase>/snapshots/snapshots.db
func GetSnapshotDBPath() string {
	return filepath.Join(GetApplicationCachesPath(), "snapshots", "snapshots.db")
}

// GetSettingsFilePath returns the path for the primary settings JSON.
// Layout: <ConfigBase>/preferences/settings.json
func GetSettingsFilePath() string {
	return filepath.Join(GetApplicationSupportPath(), "preferences", "settings.json")
}

// GetLogFilePath returns the path to the main log file using the unified OS rules:
//   - Linux/Unix:  ~/.log/<AppName>/discordstate.log
//   - macOS:       ~/Library/Logs/<AppName>/discordstate.log
//   - Windows:     %APPDATA%/<AppName>/Logs/discordstate.log
func GetLogFilePath() string {
	app := EffectiveAppName()
	base := strings.TrimSpace(platformLogDir(app))
	if base == "" {
		base = filepath.Join(".", "logs", app)
	}
	return filepath.Join(base, "discordstate.log")
}

// EnsureCacheDirs creates base cache directories as needed.
// Safe to call multiple times.
func EnsureCacheDirs() error {
	dirs := []string{
		filepath.Dir(GetSnapshotDBPath()),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory %s: %w", d, err)
		}
	}
	return nil
}
