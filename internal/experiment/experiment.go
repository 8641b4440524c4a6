package experiment

import (
	"sort"
	"time"

	"espresso/internal/munge"
	"espresso/pkg/contracts"
	"espresso/pkg/contracts/domain"
)

// Experiment is one loaded assay session: the merged feed table, the fly
// metadata table, the categorical axes observed across them, and the session
// bookkeeping (source feedlogs, duration, user-attached labels).
//
// The zero value is not usable; construct through Load, Open or Combine.
// An Experiment is not safe for concurrent mutation; the service layer
// serializes label operations against readers.
type Experiment struct {
	feeds      []domain.FeedEvent
	flies      []domain.Fly
	categories *munge.Categories

	feedlogs        []string
	durationSeconds float64
	addedLabels     []string
	createdAt       time.Time
}

// Feeds returns a deep copy of the merged feed table, sorted by FlyID and
// relative time.
func (e *Experiment) Feeds() []domain.FeedEvent {
	out := make([]domain.FeedEvent, len(e.feeds))
	for i, event := range e.feeds {
		out[i] = event.Clone()
	}
	return out
}

// Flies returns a deep copy of the fly metadata table.
func (e *Experiment) Flies() []domain.Fly {
	out := make([]domain.Fly, len(e.flies))
	for i, fly := range e.flies {
		out[i] = fly.Clone()
	}
	return out
}

// FeedCount returns the number of rows in the merged feed table, padding
// rows included.
func (e *Experiment) FeedCount() int {
	return len(e.feeds)
}

// FlyCount returns the number of flies in the metadata table.
func (e *Experiment) FlyCount() int {
	return len(e.flies)
}

// FeedlogCount returns the number of source feedlog files.
func (e *Experiment) FeedlogCount() int {
	return len(e.feedlogs)
}

// Feedlogs returns the source feedlog file names, in load order.
func (e *Experiment) Feedlogs() []string {
	return append([]string(nil), e.feedlogs...)
}

// DurationSeconds returns the experiment duration: the largest recorded
// FeedStats duration, or the caller's override when no stats were present.
func (e *Experiment) DurationSeconds() float64 {
	return e.durationSeconds
}

// CreatedAt returns when the aggregate was assembled (or, for a bundle,
// when it was originally saved).
func (e *Experiment) CreatedAt() time.Time {
	return e.createdAt
}

// Genotypes returns the ordered genotype axis.
func (e *Experiment) Genotypes() []string {
	return e.categories.Genotype.Values()
}

// Temperatures returns the ordered temperature axis.
func (e *Experiment) Temperatures() []string {
	return e.categories.Temperature.Values()
}

// Sexes returns the ordered sex axis. Empty when the metadata sheets carry
// no Sex column.
func (e *Experiment) Sexes() []string {
	return e.categories.Sex.Values()
}

// Foodtypes returns the ordered food-choice axis, covering every configured
// tube label across all flies.
func (e *Experiment) Foodtypes() []string {
	return e.categories.FoodChoice.Values()
}

// AddedLabels returns the user-attached label names in attachment order.
func (e *Experiment) AddedLabels() []string {
	return append([]string(nil), e.addedLabels...)
}

// Summary reports the experiment at a glance, mirroring what an analysis
// session prints after loading a folder.
func (e *Experiment) Summary() domain.ExperimentSummary {
	return domain.ExperimentSummary{
		FeedlogCount:    len(e.feedlogs),
		FlyCount:        len(e.flies),
		FeedRowCount:    len(e.feeds),
		Genotypes:       e.Genotypes(),
		Temperatures:    e.Temperatures(),
		Sexes:           e.Sexes(),
		Foodtypes:       e.Foodtypes(),
		DurationSeconds: e.durationSeconds,
		AddedLabels:     e.AddedLabels(),
		Version:         contracts.Version,
	}
}

// sortedUnion merges two string slices into a sorted, deduplicated set.
func sortedUnion(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
