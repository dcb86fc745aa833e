package config_test

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gizisehat/gizi/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "gizi"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "gizi"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "gizi", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "gizi", "config.yaml"),
		},
		{
			msg: "sqlite file",
			fn:  config.SQLitePath,
			res: filepath.Join(tempHome, ".cache", "gizi", "gizi.sqlite"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()
	require.NotNil(t, cfg)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "gizi", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 30, cfg.Photo.TimeoutSec)
	assert.Equal(t, 30*time.Second, cfg.PhotoTimeout())
	assert.Equal(t, 8011, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Log.Destination)
	assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	assert.Empty(t, cfg.Reference.File)
}

func TestOptionDatabaseDriver(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sets postgres", "postgres", "postgres"},
		{"sets memory", "memory", "memory"},
		{"normalizes case", "  SQLite ", "sqlite"},
		{"ignores unknown", "mysql", "sqlite"},
		{"ignores empty", "", "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseDriver(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.Driver)
		})
	}
}

func TestOptionIntegers(t *testing.T) {
	tests := []struct {
		name   string
		opt    config.Option
		getter func(*config.Config) int
		res    int
	}{
		{"port", config.OptDatabasePort(6543),
			func(c *config.Config) int { return c.Database.Port }, 6543},
		{"port zero ignored", config.OptDatabasePort(0),
			func(c *config.Config) int { return c.Database.Port }, 5432},
		{"photo timeout", config.OptPhotoTimeoutSec(5),
			func(c *config.Config) int { return c.Photo.TimeoutSec }, 5},
		{"negative timeout ignored", config.OptPhotoTimeoutSec(-1),
			func(c *config.Config) int { return c.Photo.TimeoutSec }, 30},
		{"server port", config.OptServerPort(9000),
			func(c *config.Config) int { return c.Server.Port }, 9000},
		{"jobs", config.OptJobsNumber(3),
			func(c *config.Config) int { return c.JobsNumber }, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{tt.opt})
			assert.Equal(t, tt.res, tt.getter(cfg))
		})
	}
}

func TestOptionPhotoURL(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptPhotoURL(" http://gw:9876/ ")})
	assert.Equal(t, "http://gw:9876", cfg.Photo.URL)
}

func TestOptionLogEnums(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptLogLevel("DEBUG"),
		config.OptLogFormat("text"),
		config.OptLogDestination("stdout"),
	})
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Destination)

	cfg.Update([]config.Option{
		config.OptLogLevel("verbose"),
		config.OptLogFormat("xml"),
		config.OptLogDestination("stdin"),
	})
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Destination)
}

func TestToOptionsRoundTrip(t *testing.T) {
	src := config.New()
	src.Update([]config.Option{
		config.OptDatabaseDriver("postgres"),
		config.OptDatabaseHost("db.example.com"),
		config.OptPhotoURL("http://gw"),
		config.OptPhotoAPIKey("secret"),
		config.OptReferenceFile("/tmp/ref.yaml"),
		config.OptServerPort(9999),
		config.OptJobsNumber(2),
		config.OptHomeDir("/home/test"),
	})

	dst := config.New()
	dst.Update(src.ToOptions())

	assert.Equal(t, "postgres", dst.Database.Driver)
	assert.Equal(t, "db.example.com", dst.Database.Host)
	assert.Equal(t, "http://gw", dst.Photo.URL)
	assert.Equal(t, "secret", dst.Photo.APIKey)
	assert.Equal(t, "/tmp/ref.yaml", dst.Reference.File)
	assert.Equal(t, 9999, dst.Server.Port)
	assert.Equal(t, 2, dst.JobsNumber)
	assert.Empty(t, dst.HomeDir, "HomeDir is runtime-only")
}
