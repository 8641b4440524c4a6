package munge

import (
	"fmt"
	"sort"
	"strings"

	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts/domain"
)

// Merge inner-joins event rows to fly metadata on FlyID, copying each fly's
// metadata fields onto its events. The join keys must match exactly: an
// event without a metadata row, or a fly without any event row, indicates
// malformed input and fails the merge instead of silently dropping rows.
// After padding every fly has at least its boundary rows, so a fly with no
// events at all can only mean the tables drifted apart.
func Merge(events []domain.FeedEvent, flies []domain.Fly) ([]domain.FeedEvent, error) {
	byID, err := indexFlies(flies)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(flies))
	orphaned := make(map[string]bool)

	merged := make([]domain.FeedEvent, len(events))
	for i, event := range events {
		fly, ok := byID[event.FlyID]
		if !ok {
			orphaned[event.FlyID] = true
			continue
		}
		seen[event.FlyID] = true

		event.Genotype = fly.Genotype
		event.Status = fly.Status
		event.Temperature = fly.Temperature
		event.Sex = fly.Sex
		event.FlyCountInChamber = fly.FlyCountInChamber
		event.Tubes = append([]string(nil), fly.Tubes...)
		event.AtLeastOneFeed = fly.AtLeastOneFeed
		merged[i] = event
	}

	if len(orphaned) > 0 {
		return nil, apperrors.NewDataIntegrityError(
			fmt.Sprintf("feed events reference flies with no metadata row: %s", joinSorted(orphaned)), nil)
	}

	var eventless map[string]bool
	for _, fly := range flies {
		if !seen[fly.FlyID] {
			if eventless == nil {
				eventless = make(map[string]bool)
			}
			eventless[fly.FlyID] = true
		}
	}
	if len(eventless) > 0 {
		return nil, apperrors.NewDataIntegrityError(
			fmt.Sprintf("flies with no feed rows after padding: %s", joinSorted(eventless)), nil)
	}

	return merged, nil
}

// SortEvents orders the merged table by FlyID, then by relative time, the
// canonical order of the exported feed table.
func SortEvents(events []domain.FeedEvent) []domain.FeedEvent {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].FlyID != events[j].FlyID {
			return events[i].FlyID < events[j].FlyID
		}
		return events[i].RelativeTimeS < events[j].RelativeTimeS
	})
	return events
}

func joinSorted(ids map[string]bool) string {
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Strings(list)
	return strings.Join(list, ", ")
}
