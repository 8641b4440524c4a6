package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	InputDir      string
	ExportsDir    string
	BundlesDir    string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable location.
// All paths are ALWAYS relative to the executable directory, never the
// current working directory, so the binaries behave the same whether they
// are launched from a shell, a notebook or the rig's scheduler.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)

	// Directory structure:
	//   data/
	//     input/      (FeedLog_/MetaData_/FeedStats_ CSV triplets)
	//     exports/    (CSV and Excel exports of tables and views)
	//     bundles/    (persisted .espresso bundles)
	//   logs/
	dataDir := filepath.Join(exeDir, "data")

	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		InputDir:      filepath.Join(dataDir, "input"),
		ExportsDir:    filepath.Join(dataDir, "exports"),
		BundlesDir:    filepath.Join(dataDir, "bundles"),
		LogsDir:       filepath.Join(exeDir, "logs"),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.InputDir,
		p.ExportsDir,
		p.BundlesDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// GetInputPath returns the path for a file in the assay input directory
func (p *Paths) GetInputPath(filename string) string {
	return filepath.Join(p.InputDir, filename)
}

// GetExportPath returns the path for an export file
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetBundlePath returns the path for a persisted experiment bundle.
// A bare name gets the canonical .espresso extension.
func (p *Paths) GetBundlePath(name string) string {
	if filepath.Ext(name) == "" {
		name += BundleExtension
	}
	return filepath.Join(p.BundlesDir, name)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("input", p.InputDir),
			slog.String("exports", p.ExportsDir),
			slog.String("bundles", p.BundlesDir),
			slog.String("logs", p.LogsDir),
		))
}
