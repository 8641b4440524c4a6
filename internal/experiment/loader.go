package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "espresso/internal/errors"
	"espresso/internal/files"
	"espresso/internal/munge"
	"espresso/internal/validation"
	"espresso/pkg/contracts/domain"
)

// LoadOptions adjusts how a session folder is loaded.
type LoadOptions struct {
	// DurationSeconds supplies the experiment duration when the folder has
	// no FeedStats files. When at least one FeedStats file is present the
	// measured duration wins and the override is ignored.
	DurationSeconds float64

	// Logger receives load progress. Nil selects slog.Default().
	Logger *slog.Logger
}

// ProgressFunc is called by ReadSources after each source triplet is
// processed: done of total, with the feedlog just finished.
type ProgressFunc func(done, total int, feedlog string)

// Loader runs the load pipeline phase by phase: Validate the session folder,
// ReadSources into raw tables, Assemble the merged aggregate. Load wraps the
// three phases for callers that do not need per-phase progress.
type Loader struct {
	folder    string
	opts      LoadOptions
	logger    *slog.Logger
	validator *validation.FileValidator
	discovery *files.Discovery
	padding   *munge.PaddingInserter

	triplets        []files.Triplet
	feedlogs        []string
	durationSeconds float64
	flies           []domain.Fly
	events          []domain.FeedEvent
	nonFeeding      []string
	readDone        bool
}

// NewLoader prepares a loader for one session folder. No file is touched
// until Validate runs.
func NewLoader(folder string, opts LoadOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		folder:    folder,
		opts:      opts,
		logger:    logger,
		validator: validation.NewFileValidator(logger),
		discovery: files.NewDiscovery(folder),
		padding:   munge.NewPaddingInserter(),
	}
}

// Load runs the full pipeline on a session folder and returns the assembled
// experiment. It is the synchronous entry point used by the CLI; the server
// drives the phases itself to report progress between them.
func Load(ctx context.Context, folder string, opts LoadOptions) (*Experiment, error) {
	loader := NewLoader(folder, opts)
	if err := loader.Validate(ctx); err != nil {
		return nil, err
	}
	if err := loader.ReadSources(ctx, nil); err != nil {
		return nil, err
	}
	return loader.Assemble(ctx)
}

// Validate checks the session folder layout before anything is parsed:
// every FeedLog must have its MetaData counterpart, FeedStats counterparts
// are required unless a duration override was supplied, and all sheets must
// carry their required columns. All problems are reported together.
func (l *Loader) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	requireStats := l.opts.DurationSeconds <= 0
	if err := l.validator.ValidateSessionFolder(l.folder, requireStats); err != nil {
		return err
	}

	triplets, err := l.discovery.FindTriplets("", requireStats)
	if err != nil {
		return err
	}
	l.triplets = triplets

	l.logger.Info("session folder validated",
		slog.String("folder", l.folder),
		slog.Int("triplet_count", len(triplets)))

	return nil
}

// ReadSources reads every validated triplet into the raw tables: metadata
// flies, feed events with padding and the per-event derived columns that do
// not need the merge. onProgress may be nil.
func (l *Loader) ReadSources(ctx context.Context, onProgress ProgressFunc) error {
	if l.triplets == nil {
		return fmt.Errorf("session folder has not been validated")
	}

	duration, err := l.resolveDuration()
	if err != nil {
		return err
	}
	l.durationSeconds = duration

	total := len(l.triplets)
	for i, triplet := range l.triplets {
		if err := ctx.Err(); err != nil {
			return err
		}

		flies, err := munge.ReadMetadata(triplet.MetaData.Path, triplet.Token)
		if err != nil {
			return err
		}
		events, err := munge.ReadFeedLog(triplet.FeedLog.Path, triplet.Token)
		if err != nil {
			return err
		}

		// Non-feeding flies must be detected before padding makes every
		// fly look like it has events.
		l.nonFeeding = append(l.nonFeeding, munge.DetectNonFeedingFlies(flies, events)...)

		events = l.padding.AddPadRows(flies, events, duration)
		events = munge.ComputeNanoliterColumns(events)
		events = munge.ComputeTimeColumns(events)

		l.flies = append(l.flies, flies...)
		l.events = append(l.events, events...)
		l.feedlogs = append(l.feedlogs, triplet.FeedLog.Name)

		l.logger.Debug("source triplet read",
			slog.String("feedlog", triplet.FeedLog.Name),
			slog.Int("fly_count", len(flies)),
			slog.Int("event_count", len(events)))

		if onProgress != nil {
			onProgress(i+1, total, triplet.FeedLog.Name)
		}
	}
	l.readDone = true

	l.logger.Info("sources read",
		slog.Int("feedlog_count", len(l.feedlogs)),
		slog.Int("fly_count", len(l.flies)),
		slog.Int("event_count", len(l.events)),
		slog.Float64("duration_seconds", duration))

	return nil
}

// Assemble builds the final aggregate from the raw tables: food choices are
// resolved, genotypes normalized, statuses derived, the categorical axes
// built, the tables merged, per-fly attribution computed, rows sorted and
// non-feeding flies flagged.
func (l *Loader) Assemble(ctx context.Context) (*Experiment, error) {
	if !l.readDone {
		return nil, fmt.Errorf("sources have not been read")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	events, err := munge.AssignFoodChoice(l.events, l.flies)
	if err != nil {
		return nil, err
	}

	flies := l.flies
	for i := range flies {
		flies[i].Genotype = domain.NormalizeGenotype(flies[i].Genotype)
		flies[i].Status = domain.StatusFromGenotype(flies[i].Genotype)
	}

	categories, err := munge.BuildCategories(flies, events)
	if err != nil {
		return nil, err
	}

	merged, err := munge.Merge(events, flies)
	if err != nil {
		return nil, err
	}
	merged = munge.ComputeAveragePerFlyColumns(merged)
	merged = munge.SortEvents(merged)

	flagged := munge.FlagNonFeedingFlies(flies, merged, l.nonFeeding)

	exp := &Experiment{
		feeds:           merged,
		flies:           flies,
		categories:      categories,
		feedlogs:        l.feedlogs,
		durationSeconds: l.durationSeconds,
		createdAt:       time.Now().UTC(),
	}

	l.logger.Info("experiment assembled",
		slog.Int("feedlog_count", len(l.feedlogs)),
		slog.Int("fly_count", len(flies)),
		slog.Int("feed_row_count", len(merged)),
		slog.Int("non_feeding_flies", flagged))

	return exp, nil
}

// resolveDuration picks the experiment duration: the largest duration
// recorded across the FeedStats files, in seconds, or the caller's override
// when no triplet has stats. Discovery has already rejected folders that
// have neither.
func (l *Loader) resolveDuration() (float64, error) {
	maxMinutes := 0.0
	measured := false
	for _, triplet := range l.triplets {
		if !triplet.HasStats {
			continue
		}
		minutes, err := munge.ReadExperimentDuration(triplet.FeedStats.Path)
		if err != nil {
			return 0, err
		}
		if !measured || minutes > maxMinutes {
			maxMinutes = minutes
		}
		measured = true
	}

	if measured {
		if l.opts.DurationSeconds > 0 {
			l.logger.Warn("duration override ignored, FeedStats present",
				slog.Float64("override_seconds", l.opts.DurationSeconds),
				slog.Float64("measured_seconds", maxMinutes*60))
		}
		return maxMinutes * 60, nil
	}
	if l.opts.DurationSeconds > 0 {
		return l.opts.DurationSeconds, nil
	}
	return 0, apperrors.NewMissingDurationError("session folder")
}
