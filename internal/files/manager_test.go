package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"espresso/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	paths := &config.Paths{
		ExecutableDir: base,
		DataDir:       dataDir,
		InputDir:      filepath.Join(dataDir, "input"),
		ExportsDir:    filepath.Join(dataDir, "exports"),
		BundlesDir:    filepath.Join(dataDir, "bundles"),
		LogsDir:       filepath.Join(base, "logs"),
	}
	require.NoError(t, paths.EnsureDirectories())
	return paths
}

func TestNewManager(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)
	assert.NotNil(t, manager)
	assert.Equal(t, paths, manager.paths)
}

func TestManagerFileExists(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	assert.False(t, manager.FileExists("input/FeedLog_2017-09-06_14-20-55_CS.csv"))

	err := os.WriteFile(paths.GetInputPath("FeedLog_2017-09-06_14-20-55_CS.csv"), []byte("x"), 0644)
	require.NoError(t, err)

	assert.True(t, manager.FileExists("input/FeedLog_2017-09-06_14-20-55_CS.csv"))
}

func TestManagerWriteAndReadFile(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	content := []byte("FlyID,FeedVol_µl\nFly1,0.02\n")
	err := manager.WriteFile("exports/feeds.csv", content)
	require.NoError(t, err)

	read, err := manager.ReadFile("exports/feeds.csv")
	require.NoError(t, err)
	assert.Equal(t, content, read)

	size, err := manager.GetFileSize("exports/feeds.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
}

func TestManagerCopyFile(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	require.NoError(t, manager.WriteFile("input/source.csv", []byte("data")))
	require.NoError(t, manager.CopyFile("input/source.csv", "exports/copy.csv"))

	copied, err := manager.ReadFile("exports/copy.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), copied)

	// Source must be untouched
	assert.True(t, manager.FileExists("input/source.csv"))
}

func TestManagerCopyFileMissingSource(t *testing.T) {
	manager := NewManager(testPaths(t))
	err := manager.CopyFile("input/missing.csv", "exports/copy.csv")
	assert.Error(t, err)
}

func TestManagerDeleteFile(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	require.NoError(t, manager.WriteFile("exports/todelete.csv", []byte("x")))
	require.NoError(t, manager.DeleteFile("exports/todelete.csv"))
	assert.False(t, manager.FileExists("exports/todelete.csv"))
}

func TestManagerListFiles(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	require.NoError(t, manager.WriteFile("input/a.csv", []byte("x")))
	require.NoError(t, manager.WriteFile("input/b.csv", []byte("y")))
	require.NoError(t, os.MkdirAll(filepath.Join(paths.InputDir, "subdir"), 0755))

	names, err := manager.ListFiles("input/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.csv", "b.csv"}, names)
}

func TestManagerEnsureDirectory(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	require.NoError(t, manager.EnsureDirectory("exports/nested/dir"))

	info, err := os.Stat(filepath.Join(paths.ExportsDir, "nested", "dir"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Second call is a no-op
	assert.NoError(t, manager.EnsureDirectory("exports/nested/dir"))
}

func TestManagerResolvePath(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "input prefix",
			path:     "input/log.csv",
			expected: filepath.Join(paths.InputDir, "log.csv"),
		},
		{
			name:     "exports prefix",
			path:     "exports/feeds.csv",
			expected: filepath.Join(paths.ExportsDir, "feeds.csv"),
		},
		{
			name:     "bundles prefix gets canonical extension",
			path:     "bundles/run1",
			expected: filepath.Join(paths.BundlesDir, "run1.espresso"),
		},
		{
			name:     "logs prefix",
			path:     "logs/app.log",
			expected: filepath.Join(paths.LogsDir, "app.log"),
		},
		{
			name:     "bare name lands in data dir",
			path:     "scratch.csv",
			expected: filepath.Join(paths.DataDir, "scratch.csv"),
		},
		{
			name:     "absolute path untouched",
			path:     filepath.Join(paths.ExecutableDir, "abs.csv"),
			expected: filepath.Join(paths.ExecutableDir, "abs.csv"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, manager.resolvePath(tt.path))
		})
	}
}
