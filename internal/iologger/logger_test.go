package iologger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gizisehat/gizi/pkg/config"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in  string
		res slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, parseLevel(v.in), v.in)
	}
}

func TestHandlerFormats(t *testing.T) {
	tests := []struct {
		format, prefix string
		hasTime        bool
	}{
		{"json", `{"time":`, true},
		{"text", "time=", true},
		{"tint", "INF Measurement accepted", false},
	}
	for _, v := range tests {
		t.Run(v.format, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := config.LogConfig{Format: v.format, Level: "info"}
			l := slog.New(handler(&buf, cfg))
			l.Info("Measurement accepted", "child", "c-1")
			l.Debug("hidden")
			out := buf.String()
			assert.True(t, len(out) > 0)
			assert.Contains(t, out, v.prefix)
			assert.Contains(t, out, "c-1")
			assert.NotContains(t, out, "hidden")
			assert.Equal(t, v.hasTime, bytes.Contains(buf.Bytes(), []byte("time")))
		})
	}
}

func TestInitFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file system test in short mode")
	}
	defer slog.SetDefault(slog.Default())

	dir := t.TempDir()
	cfg := config.LogConfig{Format: "json", Level: "info", Destination: "file"}
	require.NoError(t, Init(dir, cfg, false))
	slog.Info("hello")

	b, err := os.ReadFile(filepath.Join(dir, "gizi.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello")

	err = Init(filepath.Join(dir, "missing"), cfg, true)
	assert.True(t, errcode.Is(err, errcode.CreateLogFileError))
}
