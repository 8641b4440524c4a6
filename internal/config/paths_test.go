package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)
	require.NotNil(t, paths)

	assert.True(t, filepath.IsAbs(paths.ExecutableDir), "ExecutableDir should be absolute")
	assert.True(t, filepath.IsAbs(paths.DataDir), "DataDir should be absolute")
	assert.True(t, filepath.IsAbs(paths.LogsDir), "LogsDir should be absolute")

	assert.Equal(t, filepath.Join(paths.ExecutableDir, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(paths.DataDir, "input"), paths.InputDir)
	assert.Equal(t, filepath.Join(paths.DataDir, "exports"), paths.ExportsDir)
	assert.Equal(t, filepath.Join(paths.DataDir, "bundles"), paths.BundlesDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "logs"), paths.LogsDir)
}

func TestGetPathsConsistent(t *testing.T) {
	paths1, err := GetPaths()
	require.NoError(t, err)
	paths2, err := GetPaths()
	require.NoError(t, err)

	assert.Equal(t, paths1, paths2, "repeated calls resolve the same layout")
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths := &Paths{
		ExecutableDir: base,
		DataDir:       filepath.Join(base, "data"),
		InputDir:      filepath.Join(base, "data", "input"),
		ExportsDir:    filepath.Join(base, "data", "exports"),
		BundlesDir:    filepath.Join(base, "data", "bundles"),
		LogsDir:       filepath.Join(base, "logs"),
	}

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.InputDir, paths.ExportsDir, paths.BundlesDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, "directory %s should exist", dir)
		assert.True(t, info.IsDir())
	}

	// Idempotent on existing directories.
	assert.NoError(t, paths.EnsureDirectories())
}

func TestEnsureDirectoriesFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	paths := &Paths{DataDir: filepath.Join(file, "data")}
	err := paths.EnsureDirectories()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory")
}

func TestPathHelpers(t *testing.T) {
	paths := &Paths{
		ExecutableDir: "/opt/espresso",
		DataDir:       "/opt/espresso/data",
		InputDir:      "/opt/espresso/data/input",
		ExportsDir:    "/opt/espresso/data/exports",
		BundlesDir:    "/opt/espresso/data/bundles",
		LogsDir:       "/opt/espresso/logs",
	}

	assert.Equal(t, "/opt/espresso/web", paths.GetRelativePath("web"))
	assert.Equal(t, "/opt/espresso/data/input/FeedLog_x.csv", paths.GetInputPath("FeedLog_x.csv"))
	assert.Equal(t, "/opt/espresso/data/exports/feeds.csv", paths.GetExportPath("feeds.csv"))
	assert.Equal(t, "/opt/espresso/logs/espresso.log", paths.GetLogPath("espresso.log"))
}

func TestGetBundlePath(t *testing.T) {
	paths := &Paths{BundlesDir: "/opt/espresso/data/bundles"}

	assert.Equal(t, "/opt/espresso/data/bundles/run1.espresso", paths.GetBundlePath("run1"),
		"bare names get the canonical extension")
	assert.Equal(t, "/opt/espresso/data/bundles/run1.espresso", paths.GetBundlePath("run1.espresso"))
	assert.Equal(t, "/opt/espresso/data/bundles/run1.bak", paths.GetBundlePath("run1.bak"),
		"explicit extensions are kept")
}

func TestFileExists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "present")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(t.TempDir(), "absent")))
}
