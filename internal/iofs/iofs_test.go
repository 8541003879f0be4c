package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()

	for range 2 {
		err := EnsureDirs(tmpDir)
		require.NoError(t, err)
	}

	dirs := []string{
		filepath.Join(tmpDir, ".config", "iasoimport"),
		filepath.Join(tmpDir, ".cache", "iasoimport"),
		filepath.Join(tmpDir, ".local", "share", "iasoimport", "logs"),
	}
	for _, v := range dirs {
		info, err := os.Stat(v)
		require.NoError(t, err, v)
		assert.True(t, info.IsDir(), v)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm(), v)
	}
}

func TestEnsureDir(t *testing.T) {
	newDir := filepath.Join(t.TempDir(), "household", "run")

	err := EnsureDir(newDir)
	require.NoError(t, err)

	info, err := os.Stat(newDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureDirs(tmpDir))

	err := EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	configPath := filepath.Join(tmpDir, ".config", "iasoimport", "config.yaml")
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, ConfigYAML, string(content))

	// existing file is kept
	custom := "iaso:\n  url: http://localhost:8081\n"
	require.NoError(t, os.WriteFile(configPath, []byte(custom), 0644))
	require.NoError(t, EnsureConfigFile(tmpDir))
	content, err = os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, custom, string(content))
}

func TestConfigYAML(t *testing.T) {
	for _, v := range []string{"iaso:", "ledger:", "artifacts:", "log:"} {
		assert.Contains(t, ConfigYAML, v)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, WriteFile(path, []byte("a,b\n")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(content))

	err = WriteFile(filepath.Join(path, "nested"), nil)
	assert.Error(t, err)
}
