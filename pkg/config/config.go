// Package config provides configuration management for gizi.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
//   - Default config (from New()) is always valid - no validation needed
//   - All mutations go through Option functions
//   - Invalid options are rejected with gn.Warn() - config remains in valid state
//   - ToOptions() converts persistent fields (those in config.yaml)
//
// # Environment Variables
//
// Use GIZI_ prefix with underscores for nesting:
//
//	GIZI_DATABASE_DRIVER=sqlite
//	GIZI_PHOTO_URL=http://localhost:9876
//	GIZI_LOG_LEVEL=info
//	GIZI_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete gizi configuration.
type Config struct {
	// Database contains storage settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Photo contains settings of the external photo analysis gateway.
	Photo PhotoConfig `mapstructure:"photo" yaml:"photo"`

	// Server contains settings for the tool server (`gizi serve`).
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Reference points to reference data that replaces embedded tables.
	Reference ReferenceConfig `mapstructure:"reference" yaml:"reference"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for bulk import.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains storage parameters.
type DatabaseConfig struct {
	// Driver selects the repository implementation.
	// Valid values: "memory", "sqlite", "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite database file. Empty means a file in the
	// cache directory.
	Path string `mapstructure:"path" yaml:"path"`

	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// PhotoConfig describes the AI gateway used for food photo analysis.
type PhotoConfig struct {
	// URL of the gateway. Empty disables photo logging.
	URL string `mapstructure:"url" yaml:"url"`
	// APIKey is sent as a bearer token.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	// Model is the vision model name requested from the gateway.
	Model string `mapstructure:"model" yaml:"model"`
	// TimeoutSec bounds every analysis call.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// ServerConfig contains the listen address of the tool server.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// ReferenceConfig points to an external reference data file.
type ReferenceConfig struct {
	// File is a YAML file with growth tables, targets, foods and intents.
	// Empty means embedded reference data.
	File string `mapstructure:"file" yaml:"file"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "gizi",
			SSLMode:  "disable",
		},
		Photo: PhotoConfig{
			Model:      "anthropic/claude-3.5-sonnet",
			TimeoutSec: 30,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8011,
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
