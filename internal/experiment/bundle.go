package experiment

import (
	"espresso/internal/bundle"
	"espresso/internal/munge"
)

// Save persists the experiment as a .espresso bundle at path. The bundle
// carries both tables, the session bookkeeping and per-table checksums, so
// Open can restore the aggregate exactly and refuse corrupted files.
func (e *Experiment) Save(path string) error {
	return bundle.Write(path, &bundle.Bundle{
		Manifest: bundle.Manifest{
			CreatedAt:       e.createdAt,
			DurationSeconds: e.durationSeconds,
			Feedlogs:        e.Feedlogs(),
			AddedLabels:     e.AddedLabels(),
		},
		Feeds: e.feeds,
		Flies: e.flies,
	})
}

// Open restores an experiment from a .espresso bundle. The categorical axes
// are rebuilt from the restored rows, which reproduces the axes the
// experiment had when it was saved.
func Open(path string) (*Experiment, error) {
	b, err := bundle.Read(path)
	if err != nil {
		return nil, err
	}

	categories, err := munge.BuildCategories(b.Flies, b.Feeds)
	if err != nil {
		return nil, err
	}

	return &Experiment{
		feeds:           b.Feeds,
		flies:           b.Flies,
		categories:      categories,
		feedlogs:        b.Manifest.Feedlogs,
		durationSeconds: b.Manifest.DurationSeconds,
		addedLabels:     b.Manifest.AddedLabels,
		createdAt:       b.Manifest.CreatedAt,
	}, nil
}
