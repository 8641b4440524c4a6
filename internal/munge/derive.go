package munge

import (
	"math"

	"espresso/pkg/contracts/domain"
)

// ComputeNanoliterColumns fills FeedVol_nl from the raw microliter volume.
// NaN volumes stay NaN.
func ComputeNanoliterColumns(events []domain.FeedEvent) []domain.FeedEvent {
	for i := range events {
		events[i].FeedVolNanolitres = events[i].FeedVolMicrolitres * 1000
	}
	return events
}

// ComputeTimeColumns fills RelativeTime_s and FeedDuration_s from the raw
// millisecond ticks, then FeedSpeed_nl/s. It must run after
// ComputeNanoliterColumns so the speed has a nanoliter numerator.
// Speed is NaN on invalid rows and rows without a positive duration.
func ComputeTimeColumns(events []domain.FeedEvent) []domain.FeedEvent {
	for i := range events {
		events[i].RelativeTimeS = events[i].RelativeTimeMs / 1000
		events[i].FeedDurationS = events[i].FeedDurationMs / 1000

		if events[i].Valid && events[i].FeedDurationS > 0 {
			events[i].FeedSpeedNlPerS = events[i].FeedVolNanolitres / events[i].FeedDurationS
		} else {
			events[i].FeedSpeedNlPerS = math.NaN()
		}
	}
	return events
}

// ComputeAveragePerFlyColumns fills the three per-fly attribution columns.
// Multiple flies may share one feeding chamber, so each event's measured
// quantity is divided by the chamber's fly count. It must run after the
// merge step has put FlyCountInChamber on every row.
func ComputeAveragePerFlyColumns(events []domain.FeedEvent) []domain.FeedEvent {
	for i := range events {
		count := float64(events[i].FlyCountInChamber)
		if count <= 0 {
			events[i].AvgFeedVolPerFly = math.NaN()
			events[i].AvgFeedCountPerFly = math.NaN()
			events[i].AvgFeedSpeedPerFly = math.NaN()
			continue
		}

		events[i].AvgFeedVolPerFly = events[i].FeedVolMicrolitres / count

		if events[i].Valid {
			events[i].AvgFeedCountPerFly = 1 / count
		} else {
			events[i].AvgFeedCountPerFly = 0
		}

		if events[i].Valid && events[i].FeedDurationMs > 0 {
			// µl/ms scaled to nl/s: both conversions are a factor of 1000.
			events[i].AvgFeedSpeedPerFly = events[i].AvgFeedVolPerFly / events[i].FeedDurationMs * 1e6
		} else {
			events[i].AvgFeedSpeedPerFly = math.NaN()
		}
	}
	return events
}
