package munge

import (
	"espresso/pkg/contracts/domain"
)

// PaddingInserter appends synthetic boundary rows so every fly's feed rows
// span the full experiment duration. Time-window aggregations downstream
// (percent feeding over time, cumulative sums) then cover the whole domain
// even for flies with zero or sparse real events.
type PaddingInserter struct{}

// NewPaddingInserter creates a new padding inserter
func NewPaddingInserter() *PaddingInserter {
	return &PaddingInserter{}
}

// AddPadRows appends two padding rows per (fly, configured tube): one at
// time zero and one at the experiment end. Padding rows carry zero duration
// and volume and Valid=false, so they never count as feeds.
func (p *PaddingInserter) AddPadRows(flies []domain.Fly, events []domain.FeedEvent, durationSeconds float64) []domain.FeedEvent {
	result, _ := p.AddPadRowsWithStats(flies, events, durationSeconds)
	return result
}

// PaddingStatistics describes one padding pass.
type PaddingStatistics struct {
	TotalRows    int
	PadRows      int
	FliesPadded  int
	TubesPerFly  map[string]int
}

// AddPadRowsWithStats performs padding and returns statistics.
func (p *PaddingInserter) AddPadRowsWithStats(flies []domain.Fly, events []domain.FeedEvent, durationSeconds float64) ([]domain.FeedEvent, PaddingStatistics) {
	stats := PaddingStatistics{
		TubesPerFly: make(map[string]int, len(flies)),
	}

	endMs := durationSeconds * 1000
	result := events

	for _, fly := range flies {
		tubes := 0
		for choiceIdx, label := range fly.Tubes {
			if label == "" {
				// Unconfigured tube slot; nothing to pad.
				continue
			}
			tubes++
			for _, timeMs := range []float64{0, endMs} {
				result = append(result, domain.FeedEvent{
					FlyID:          fly.FlyID,
					ExperimentID:   fly.ExperimentID,
					ChoiceIdx:      choiceIdx,
					RelativeTimeMs: timeMs,
					Valid:          false,
				})
				stats.PadRows++
			}
		}
		if tubes > 0 {
			stats.FliesPadded++
			stats.TubesPerFly[fly.FlyID] = tubes
		}
	}

	stats.TotalRows = len(result)
	return result, stats
}
