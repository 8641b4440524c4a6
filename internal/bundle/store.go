package bundle

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts"
)

// Write persists the bundle at path, replacing any existing file. The
// archive is assembled in a temp file and renamed into place, so readers
// never see a half-written bundle. Write fills in the manifest's schema
// version, toolkit version and table references; the caller supplies the
// session bookkeeping.
func Write(path string, b *Bundle) error {
	b.Manifest.SchemaVersion = contracts.BundleFormatVersion
	b.Manifest.ToolkitVersion = contracts.Version

	var feedsBuf, fliesBuf bytes.Buffer
	if err := encodeFeeds(&feedsBuf, b.Feeds, b.Manifest.AddedLabels); err != nil {
		return apperrors.NewStorageError("encoding feed table", err)
	}
	if err := encodeFlies(&fliesBuf, b.Flies, b.Manifest.AddedLabels); err != nil {
		return apperrors.NewStorageError("encoding fly table", err)
	}
	b.Manifest.Tables = []TableRef{
		{Name: feedsTable, Filename: feedsFilename, SHA256: checksum(feedsBuf.Bytes()), Rows: len(b.Feeds)},
		{Name: fliesTable, Filename: fliesFilename, SHA256: checksum(fliesBuf.Bytes()), Rows: len(b.Flies)},
	}

	manifest, err := json.MarshalIndent(b.Manifest, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("encoding bundle manifest", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("locking bundle %s", path), err)
	}
	if !locked {
		return apperrors.NewStorageError(
			fmt.Sprintf("bundle %s is being written by another process", path), nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("creating bundle directory for %s", path), err)
	}

	tmp := path + ".tmp"
	if err := writeArchive(tmp, manifest, feedsBuf.Bytes(), fliesBuf.Bytes()); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return apperrors.NewStorageError(fmt.Sprintf("replacing bundle %s", path), err)
	}

	slog.Info("bundle written",
		slog.String("path", path),
		slog.Int("feed_rows", len(b.Feeds)),
		slog.Int("fly_rows", len(b.Flies)),
		slog.String("schema", b.Manifest.SchemaVersion))

	return nil
}

func writeArchive(path string, manifest, feeds, flies []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("creating bundle %s", path), err)
	}

	zw := zip.NewWriter(f)
	entries := []struct {
		name string
		data []byte
	}{
		{manifestFilename, manifest},
		{feedsFilename, feeds},
		{fliesFilename, flies},
	}
	for _, entry := range entries {
		w, err := zw.Create(entry.name)
		if err == nil {
			_, err = w.Write(entry.data)
		}
		if err != nil {
			_ = zw.Close()
			_ = f.Close()
			return apperrors.NewStorageError(
				fmt.Sprintf("writing bundle entry %s", entry.name), err)
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return apperrors.NewStorageError("finalizing bundle archive", err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("closing bundle %s", path), err)
	}
	return nil
}

// Read opens a .espresso bundle, verifies its schema version and table
// checksums, and decodes both tables.
func Read(path string) (*Bundle, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("opening bundle %s", path), err)
	}
	defer zr.Close()

	manifestData, err := readEntry(&zr.Reader, manifestFilename)
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return nil, apperrors.NewStorageError("parsing bundle manifest", err)
	}
	if err := checkSchemaVersion(manifest.SchemaVersion); err != nil {
		return nil, err
	}

	feedsData, err := verifiedEntry(&zr.Reader, manifest, feedsTable)
	if err != nil {
		return nil, err
	}
	fliesData, err := verifiedEntry(&zr.Reader, manifest, fliesTable)
	if err != nil {
		return nil, err
	}

	feeds, err := decodeFeeds(bytes.NewReader(feedsData), manifest.AddedLabels)
	if err != nil {
		return nil, err
	}
	flies, err := decodeFlies(bytes.NewReader(fliesData), manifest.AddedLabels)
	if err != nil {
		return nil, err
	}

	if err := checkRowCount(manifest, feedsTable, len(feeds)); err != nil {
		return nil, err
	}
	if err := checkRowCount(manifest, fliesTable, len(flies)); err != nil {
		return nil, err
	}

	slog.Debug("bundle read",
		slog.String("path", path),
		slog.Int("feed_rows", len(feeds)),
		slog.Int("fly_rows", len(flies)),
		slog.String("schema", manifest.SchemaVersion))

	return &Bundle{Manifest: manifest, Feeds: feeds, Flies: flies}, nil
}

// verifiedEntry reads one table file from the archive and checks it against
// the manifest's checksum before anything is parsed.
func verifiedEntry(zr *zip.Reader, manifest Manifest, tableName string) ([]byte, error) {
	ref, err := manifest.table(tableName)
	if err != nil {
		return nil, err
	}
	data, err := readEntry(zr, ref.Filename)
	if err != nil {
		return nil, err
	}
	if sum := checksum(data); sum != ref.SHA256 {
		return nil, apperrors.NewDataIntegrityError(
			fmt.Sprintf("bundle table %s failed its checksum; the bundle is corrupt or was modified",
				tableName), nil)
	}
	return data, nil
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, apperrors.NewStorageError(
			fmt.Sprintf("bundle has no %s entry", name), err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewStorageError(
			fmt.Sprintf("reading bundle entry %s", name), err)
	}
	return data, nil
}

func checkRowCount(manifest Manifest, tableName string, got int) error {
	ref, err := manifest.table(tableName)
	if err != nil {
		return err
	}
	if ref.Rows != got {
		return apperrors.NewDataIntegrityError(
			fmt.Sprintf("bundle table %s has %d rows, manifest says %d",
				tableName, got, ref.Rows), nil)
	}
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
