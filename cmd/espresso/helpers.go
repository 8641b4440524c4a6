package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"espresso/internal/experiment"
)

// configureLogging keeps library logging quiet unless --verbose is set.
func configureLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func openBundle(path string) (*experiment.Experiment, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("bundle %s does not exist", path)
		}
		return nil, fmt.Errorf("stat bundle: %w", err)
	}

	exp, err := experiment.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	return exp, nil
}

// defaultBundlePath derives an output bundle name from a session folder.
func defaultBundlePath(folder string) string {
	base := filepath.Base(filepath.Clean(folder))
	if base == "." || base == string(filepath.Separator) {
		base = "experiment"
	}
	return base + ".espresso"
}

// bundleStem strips the directory and extension from a bundle path,
// leaving the stem used to name exported files.
func bundleStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
