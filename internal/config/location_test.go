package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func setHome(t *testing.T, dir string) {
	t.Helper()
	homeVar := "HOME"
	if runtime.GOOS == "windows" {
		homeVar = "USERPROFILE"
	}
	t.Setenv(homeVar, dir)
}

func TestGetConfigPathEnvOverride(t *testing.T) {
	t.Setenv("DECISIONCORE_CONFIG", "/tmp/custom-config.yaml")

	got, err := GetConfigPath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom-config.yaml", got)
}

func TestGetConfigPathDefault(t *testing.T) {
	dir := t.TempDir()
	setHome(t, dir)
	t.Setenv("DECISIONCORE_CONFIG", "")

	got, err := GetConfigPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ".decisioncore", "config.yaml"), got)
}

func TestDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	setHome(t, dir)
	t.Setenv("DECISIONCORE_CONFIG", "")

	require.Empty(t, DefaultConfigPath(), "missing file means no file")

	path := filepath.Join(dir, ".decisioncore", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("sim:\n  ticks: 3\n"), 0o600))
	require.Equal(t, path, DefaultConfigPath())
}
