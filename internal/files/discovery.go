package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"espresso/internal/config"
	apperrors "espresso/internal/errors"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Triplet groups the three CRITTA CSVs that describe one assay session:
// the raw feed log, its metadata sheet and the per-chamber feed statistics.
// All three share the same datetime token; only the role prefix differs.
type Triplet struct {
	Token     string
	FeedLog   FileInfo
	MetaData  FileInfo
	FeedStats FileInfo
	HasStats  bool
}

// Discovery provides file discovery operations over a session folder
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindCSVFiles finds all CSV files in the specified directory
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	// If dir is already absolute, use it directly
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(strings.ToLower(name), config.CSVExtension) {
			info, err := entry.Info()
			if err != nil {
				continue
			}

			files = append(files, FileInfo{
				Path:    filepath.Join(fullPath, name),
				Name:    name,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				IsDir:   false,
			})
		}
	}

	return files, nil
}

// FindFeedLogs finds all FeedLog CSVs in the specified directory, sorted by
// name so repeated loads of the same folder see the sessions in the same order.
func (d *Discovery) FindFeedLogs(dir string) ([]FileInfo, error) {
	files, err := d.FindCSVFiles(dir)
	if err != nil {
		return nil, err
	}

	var feedlogs []FileInfo
	for _, file := range files {
		if strings.HasPrefix(file.Name, config.FeedLogPrefix) {
			feedlogs = append(feedlogs, file)
		}
	}

	sort.Slice(feedlogs, func(i, j int) bool {
		return feedlogs[i].Name < feedlogs[j].Name
	})

	return feedlogs, nil
}

// FindTriplets resolves every FeedLog in the directory to its MetaData and
// FeedStats counterparts. A missing MetaData is always an error. A missing
// FeedStats is an error only when requireStats is true; callers that supply
// an explicit experiment duration pass false and get HasStats=false triplets.
func (d *Discovery) FindTriplets(dir string, requireStats bool) ([]Triplet, error) {
	feedlogs, err := d.FindFeedLogs(dir)
	if err != nil {
		return nil, err
	}

	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	var triplets []Triplet
	for _, feedlog := range feedlogs {
		triplet := Triplet{
			Token:   TripletToken(feedlog.Name),
			FeedLog: feedlog,
		}

		metadataName := CounterpartName(feedlog.Name, config.MetaDataPrefix)
		metadata, ok := statFile(filepath.Join(fullPath, metadataName))
		if !ok {
			return nil, apperrors.NewMissingFileError(feedlog.Name, config.MetaDataPrefix)
		}
		triplet.MetaData = metadata

		statsName := CounterpartName(feedlog.Name, config.FeedStatsPrefix)
		stats, ok := statFile(filepath.Join(fullPath, statsName))
		if ok {
			triplet.FeedStats = stats
			triplet.HasStats = true
		} else if requireStats {
			return nil, apperrors.NewMissingDurationError(feedlog.Name)
		}

		triplets = append(triplets, triplet)
	}

	return triplets, nil
}

// TripletToken extracts the shared datetime token from a feed log filename.
// "FeedLog_2017-09-06_14-20-55_CS.csv" yields "2017-09-06_14-20-55".
func TripletToken(feedlogName string) string {
	base := strings.TrimSuffix(feedlogName, config.CSVExtension)
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return strings.TrimPrefix(base, config.FeedLogPrefix+"_")
	}
	return strings.Join(parts[1:3], "_")
}

// CounterpartName maps a FeedLog filename to the name of the counterpart
// file with the given role prefix (MetaData or FeedStats).
func CounterpartName(feedlogName, prefix string) string {
	return strings.Replace(feedlogName, config.FeedLogPrefix, prefix, 1)
}

func statFile(path string) (FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return FileInfo{}, false
	}
	return FileInfo{
		Path:    path,
		Name:    filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   false,
	}, true
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
