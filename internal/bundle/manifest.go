package bundle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts"
	"espresso/pkg/contracts/domain"
)

const (
	manifestFilename = "manifest.json"
	feedsFilename    = "feeds.csv"
	fliesFilename    = "flies.csv"

	feedsTable = "feeds"
	fliesTable = "flies"
)

// Manifest is the bundle's self-description, stored as manifest.json.
type Manifest struct {
	// SchemaVersion identifies the bundle layout, "v1" currently. Open
	// rejects bundles whose major version differs from the toolkit's.
	SchemaVersion string `json:"schema_version"`

	// ToolkitVersion is the toolkit that wrote the bundle, informational.
	ToolkitVersion string `json:"toolkit_version"`

	// CreatedAt is when the experiment was originally assembled.
	CreatedAt time.Time `json:"created_at"`

	DurationSeconds float64  `json:"duration_seconds"`
	Feedlogs        []string `json:"feedlogs"`
	AddedLabels     []string `json:"added_labels,omitempty"`

	Tables []TableRef `json:"tables"`
}

// TableRef describes one CSV table stored in the bundle.
type TableRef struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	SHA256   string `json:"sha256"`
	Rows     int    `json:"rows"`
}

// Bundle is the in-memory form of one .espresso file.
type Bundle struct {
	Manifest Manifest
	Feeds    []domain.FeedEvent
	Flies    []domain.Fly
}

// table returns the manifest's reference for a named table.
func (m Manifest) table(name string) (TableRef, error) {
	for _, ref := range m.Tables {
		if ref.Name == name {
			return ref, nil
		}
	}
	return TableRef{}, apperrors.NewDataIntegrityError(
		fmt.Sprintf("bundle manifest lists no %s table", name), nil)
}

// checkSchemaVersion rejects bundles written under a different major schema
// version. Minor additions stay readable; a major bump means the layout
// changed incompatibly.
func checkSchemaVersion(version string) error {
	major, err := majorVersion(version)
	if err != nil {
		return apperrors.NewStorageError(
			fmt.Sprintf("bundle schema version %q is malformed", version), err)
	}
	current, err := majorVersion(contracts.BundleFormatVersion)
	if err != nil {
		return apperrors.NewStorageError("toolkit bundle version is malformed", err)
	}
	if major != current {
		return apperrors.NewStorageError(
			fmt.Sprintf("bundle schema %s is not readable by this toolkit (%s)",
				version, contracts.BundleFormatVersion), nil)
	}
	return nil
}

func majorVersion(version string) (int, error) {
	v := strings.TrimPrefix(version, "v")
	if i := strings.Index(v, "."); i >= 0 {
		v = v[:i]
	}
	return strconv.Atoi(v)
}
