package services

import (
	"context"
	"log/slog"
	"sync"

	"espresso/internal/experiment"
	"espresso/internal/pipeline"
	"espresso/pkg/contracts/domain"
)

// WebSocketHub is the broadcast surface the services need from the live
// update hub. The daemon injects the concrete hub; tests inject a mock.
type WebSocketHub interface {
	BroadcastRefresh(source string, components []string)
	BroadcastError(code, message string, details interface{}, fatal bool)
}

// refreshComponents names the frontend panes invalidated whenever the
// current aggregate changes.
var refreshComponents = []string{"experiment", "feeds", "flies", "views"}

// ExperimentService owns the daemon's current experiment aggregate. Loads
// run through the pipeline manager; every other operation reads or mutates
// the aggregate under a RWMutex, so concurrent HTTP readers never observe a
// half-applied label or combine.
type ExperimentService struct {
	manager *pipeline.Manager
	hub     WebSocketHub
	logger  *slog.Logger

	mu      sync.RWMutex
	current *experiment.Experiment
}

// NewExperimentService creates the experiment service. A nil logger falls
// back to slog.Default.
func NewExperimentService(manager *pipeline.Manager, hub WebSocketHub, logger *slog.Logger) *ExperimentService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("ExperimentService initialized",
		slog.Bool("manager_present", manager != nil),
		slog.Bool("hub_present", hub != nil))

	return &ExperimentService{
		manager: manager,
		hub:     hub,
		logger:  logger,
	}
}

// Load runs the load pipeline on folder and, on success, installs the
// loaded aggregate as the current experiment. A second load while one is
// running fails with pipeline.ErrLoadInProgress; step progress streams to
// WebSocket clients through the pipeline broadcaster.
func (es *ExperimentService) Load(ctx context.Context, folder string, durationSeconds float64) (*pipeline.LoadResponse, error) {
	resp, err := es.manager.Execute(ctx, pipeline.LoadRequest{
		Folder:          folder,
		DurationSeconds: durationSeconds,
	})
	if err != nil {
		es.logger.ErrorContext(ctx, "experiment load failed",
			slog.String("folder", folder),
			slog.String("error", err.Error()))
		es.hub.BroadcastError("LOAD_FAILED", err.Error(),
			map[string]interface{}{"folder": folder}, false)
		return resp, err
	}

	es.mu.Lock()
	es.current = resp.Experiment
	es.mu.Unlock()

	es.logger.InfoContext(ctx, "experiment installed",
		slog.String("operation_id", resp.ID),
		slog.String("folder", folder),
		slog.Int("fly_count", resp.Experiment.FlyCount()),
		slog.Int("feed_count", resp.Experiment.FeedCount()))

	es.hub.BroadcastRefresh("load", refreshComponents)
	return resp, nil
}

// Loaded reports whether an aggregate is currently installed.
func (es *ExperimentService) Loaded() bool {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return es.current != nil
}

// Summary returns the current experiment's summary.
func (es *ExperimentService) Summary(ctx context.Context) (domain.ExperimentSummary, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	if es.current == nil {
		return domain.ExperimentSummary{}, ErrNoExperiment
	}
	return es.current.Summary(), nil
}

// Feeds returns a copy of the merged feed table.
func (es *ExperimentService) Feeds(ctx context.Context) ([]domain.FeedEvent, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	if es.current == nil {
		return nil, ErrNoExperiment
	}
	return es.current.Feeds(), nil
}

// Flies returns a copy of the fly table.
func (es *ExperimentService) Flies(ctx context.Context) ([]domain.Fly, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	if es.current == nil {
		return nil, ErrNoExperiment
	}
	return es.current.Flies(), nil
}

// Snapshot returns copies of both tables taken under one read lock, plus
// the added label names. Callers computing multi-table views use this so
// they never mix rows from two different aggregates.
func (es *ExperimentService) Snapshot(ctx context.Context) ([]domain.FeedEvent, []domain.Fly, []string, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	if es.current == nil {
		return nil, nil, nil, ErrNoExperiment
	}
	return es.current.Feeds(), es.current.Flies(), es.current.AddedLabels(), nil
}

// AttachLabel adds a label column to both tables and returns the updated
// summary. The aggregate is unchanged when the spec is invalid.
func (es *ExperimentService) AttachLabel(ctx context.Context, name string, spec domain.LabelSpec) (domain.ExperimentSummary, error) {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.current == nil {
		return domain.ExperimentSummary{}, ErrNoExperiment
	}
	if err := es.current.AttachLabel(name, spec); err != nil {
		return domain.ExperimentSummary{}, err
	}

	es.logger.InfoContext(ctx, "label attached",
		slog.String("label", name),
		slog.String("kind", string(spec.Kind)))

	es.hub.BroadcastRefresh("labels", refreshComponents)
	return es.current.Summary(), nil
}

// RemoveLabels removes the named label columns, or every added label when
// names is empty, and returns the names actually removed. Removing a label
// that was never attached fails and leaves the aggregate unchanged.
func (es *ExperimentService) RemoveLabels(ctx context.Context, names ...string) ([]string, error) {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.current == nil {
		return nil, ErrNoExperiment
	}

	removed := names
	if len(names) == 0 {
		all, err := es.current.RemoveAllLabels()
		if err != nil {
			return nil, err
		}
		removed = all
	} else if err := es.current.RemoveLabels(names...); err != nil {
		return nil, err
	}

	es.logger.InfoContext(ctx, "labels removed",
		slog.Int("count", len(removed)))

	es.hub.BroadcastRefresh("labels", refreshComponents)
	return removed, nil
}

// Combine merges the bundle at path into the current experiment and
// installs the combined aggregate. Schema or fly-set conflicts leave the
// current aggregate in place.
func (es *ExperimentService) Combine(ctx context.Context, path string) (domain.ExperimentSummary, error) {
	other, err := experiment.Open(path)
	if err != nil {
		es.logger.ErrorContext(ctx, "combine source failed to open",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return domain.ExperimentSummary{}, err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	if es.current == nil {
		return domain.ExperimentSummary{}, ErrNoExperiment
	}

	combined, err := es.current.Combine(other)
	if err != nil {
		return domain.ExperimentSummary{}, err
	}
	es.current = combined

	es.logger.InfoContext(ctx, "experiments combined",
		slog.String("path", path),
		slog.Int("fly_count", combined.FlyCount()),
		slog.Int("feedlog_count", combined.FeedlogCount()))

	es.hub.BroadcastRefresh("combine", refreshComponents)
	return combined.Summary(), nil
}

// Save persists the current experiment as a bundle at path.
func (es *ExperimentService) Save(ctx context.Context, path string) error {
	es.mu.RLock()
	defer es.mu.RUnlock()

	if es.current == nil {
		return ErrNoExperiment
	}
	if err := es.current.Save(path); err != nil {
		es.logger.ErrorContext(ctx, "bundle save failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return err
	}

	es.logger.InfoContext(ctx, "bundle saved", slog.String("path", path))
	return nil
}

// Open restores an experiment from the bundle at path and installs it,
// replacing whatever was loaded before.
func (es *ExperimentService) Open(ctx context.Context, path string) (domain.ExperimentSummary, error) {
	exp, err := experiment.Open(path)
	if err != nil {
		es.logger.ErrorContext(ctx, "bundle open failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return domain.ExperimentSummary{}, err
	}

	es.mu.Lock()
	es.current = exp
	es.mu.Unlock()

	es.logger.InfoContext(ctx, "bundle opened",
		slog.String("path", path),
		slog.Int("fly_count", exp.FlyCount()))

	es.hub.BroadcastRefresh("bundle", refreshComponents)
	return exp.Summary(), nil
}
