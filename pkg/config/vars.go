package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gizi"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gizi by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/gizi by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gizi/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gizi/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// SQLitePath returns the SQLite file used when database.path is empty.
// Returns ~/.cache/gizi/gizi.sqlite by default.
func SQLitePath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), AppName+".sqlite")
}
