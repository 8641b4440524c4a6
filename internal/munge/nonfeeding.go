package munge

import (
	"espresso/pkg/contracts/domain"
)

// DetectNonFeedingFlies returns the identifiers of flies with no valid
// positive-duration feed event. It runs on the raw per-feedlog rows, before
// padding, so padding rows can never mask a non-feeding fly.
func DetectNonFeedingFlies(flies []domain.Fly, events []domain.FeedEvent) []string {
	fed := make(map[string]bool, len(flies))
	for _, event := range events {
		if event.Valid && event.FeedDurationMs > 0 {
			fed[event.FlyID] = true
		}
	}

	var nonFeeding []string
	for _, fly := range flies {
		if !fed[fly.FlyID] {
			nonFeeding = append(nonFeeding, fly.FlyID)
		}
	}
	return nonFeeding
}

// FlagNonFeedingFlies sets AtLeastOneFeed=false on the named flies in both
// tables and returns how many flies were flagged.
func FlagNonFeedingFlies(flies []domain.Fly, events []domain.FeedEvent, nonFeeding []string) int {
	if len(nonFeeding) == 0 {
		return 0
	}

	flagged := make(map[string]bool, len(nonFeeding))
	for _, id := range nonFeeding {
		flagged[id] = true
	}

	count := 0
	for i := range flies {
		if flagged[flies[i].FlyID] {
			flies[i].AtLeastOneFeed = false
			count++
		}
	}
	for i := range events {
		if flagged[events[i].FlyID] {
			events[i].AtLeastOneFeed = false
		}
	}
	return count
}
