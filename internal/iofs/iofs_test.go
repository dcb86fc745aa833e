package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnsureDirs_CreatesDirectories verifies all required
// directories are created.
func TestEnsureDirs_CreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureDirs(tmpDir))

	dirs := []string{
		filepath.Join(tmpDir, ".config", "gizi"),
		filepath.Join(tmpDir, ".cache", "gizi"),
		filepath.Join(tmpDir, ".local", "share", "gizi", "logs"),
	}
	for _, v := range dirs {
		info, err := os.Stat(v)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), v)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	}

	// repeated calls keep working
	require.NoError(t, EnsureDirs(tmpDir))
}

func TestTouchDir_FileInTheWay(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := touchDir(filepath.Join(blocker, "sub"))
	assert.True(t, errcode.Is(err, errcode.CreateDirError))
}

func TestEnsureConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureDirs(tmpDir))
	require.NoError(t, EnsureConfigFile(tmpDir))

	path := filepath.Join(tmpDir, ".config", "gizi", "config.yaml")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, templates.ConfigYAML, string(b))

	// an existing file is never overwritten
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))
	require.NoError(t, EnsureConfigFile(tmpDir))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log:\n  level: debug\n", string(b))
}

func TestEnsureConfigFile_NoDir(t *testing.T) {
	err := EnsureConfigFile(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errcode.Is(err, errcode.CopyFileError))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("foods: []\n"), 0644))

	b, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foods: []\n", string(b))

	_, err = ReadFile(path + ".missing")
	assert.True(t, errcode.Is(err, errcode.ReadFileError))
}
