package experiment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "espresso/internal/errors"
	"espresso/internal/munge"
	"espresso/pkg/contracts/domain"
)

// Combine merges two experiments into a new one: the union of both tables
// and feedlog lists, with the categorical axes rebuilt as if both sessions
// had been loaded together. Neither input is modified.
//
// The two experiments must be schema-compatible: their added-label sets must
// match (a label present on one side only would leave undefined holes in the
// merged table), and no fly may appear in both.
func (e *Experiment) Combine(other *Experiment) (*Experiment, error) {
	if other == nil {
		return nil, apperrors.NewUserInputError("cannot combine with a nil experiment")
	}

	if err := compatibleLabels(e.addedLabels, other.addedLabels); err != nil {
		return nil, err
	}
	if err := disjointFlies(e.flies, other.flies); err != nil {
		return nil, err
	}

	categories, err := e.categories.Union(other.categories)
	if err != nil {
		return nil, err
	}

	feeds := make([]domain.FeedEvent, 0, len(e.feeds)+len(other.feeds))
	for _, event := range e.feeds {
		feeds = append(feeds, event.Clone())
	}
	for _, event := range other.feeds {
		feeds = append(feeds, event.Clone())
	}
	feeds = munge.SortEvents(feeds)

	flies := make([]domain.Fly, 0, len(e.flies)+len(other.flies))
	for _, fly := range e.flies {
		flies = append(flies, fly.Clone())
	}
	for _, fly := range other.flies {
		flies = append(flies, fly.Clone())
	}

	duration := e.durationSeconds
	if other.durationSeconds > duration {
		duration = other.durationSeconds
	}

	return &Experiment{
		feeds:           feeds,
		flies:           flies,
		categories:      categories,
		feedlogs:        sortedUnion(e.feedlogs, other.feedlogs),
		durationSeconds: duration,
		addedLabels:     append([]string(nil), e.addedLabels...),
		createdAt:       time.Now().UTC(),
	}, nil
}

// compatibleLabels checks that both sides carry the same added-label set,
// ignoring attachment order.
func compatibleLabels(a, b []string) error {
	if sameStringSet(a, b) {
		return nil
	}
	return apperrors.NewDataIntegrityError(
		fmt.Sprintf("incompatible label schemas: %s vs %s",
			describeLabels(a), describeLabels(b)), nil)
}

// disjointFlies checks that no FlyID appears in both metadata tables.
// Combining overlapping sessions would duplicate the merge key.
func disjointFlies(a, b []domain.Fly) error {
	ids := make(map[string]bool, len(a))
	for _, fly := range a {
		ids[fly.FlyID] = true
	}
	var shared []string
	for _, fly := range b {
		if ids[fly.FlyID] {
			shared = append(shared, fly.FlyID)
		}
	}
	if len(shared) == 0 {
		return nil
	}
	sort.Strings(shared)
	return apperrors.NewDataIntegrityError(
		fmt.Sprintf("experiments share %d fly ID(s): %s",
			len(shared), strings.Join(shared, ", ")), nil)
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}

func describeLabels(labels []string) string {
	if len(labels) == 0 {
		return "no labels"
	}
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return "[" + strings.Join(sorted, ", ") + "]"
}
