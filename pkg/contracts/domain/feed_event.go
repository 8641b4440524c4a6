package domain

import (
	"encoding/json"
	"math"
)

// FeedEvent is the Single Source of Truth for one row of the merged feed
// table. It starts life as a raw FeedLog row, is enriched by the munging
// pipeline (derived columns, food choice) and finally carries the owning
// fly's metadata after the merge step. Padding rows are FeedEvents with
// Valid=false and zero duration/volume.
//
// Measured quantities that were not recorded are NaN, never zero. Zero is a
// real measurement on padding rows only.
type FeedEvent struct {
	// FlyID is the globally unique fly identifier, formed as
	// "{datetime_exptname}_Fly{ID}", e.g. "0911-1403_SecondRun_Fly3".
	FlyID string `json:"fly_id" csv:"FlyID" validate:"required"`

	// ExperimentID is the datetime_exptname token shared by the triplet
	// files this event was loaded from.
	ExperimentID string `json:"experiment_id" csv:"ExperimentID" validate:"required"`

	// ChoiceIdx is the zero-based index of the tube the fly fed from.
	ChoiceIdx int `json:"choice_idx" csv:"ChoiceIdx" validate:"min=0"`

	// RelativeTimeMs is the raw event start time in milliseconds since
	// experiment start.
	RelativeTimeMs float64 `json:"relative_time_ms" csv:"RelativeTime_ms"`

	// RelativeTimeS is RelativeTimeMs converted to seconds.
	RelativeTimeS float64 `json:"relative_time_s" csv:"RelativeTime_s"`

	// FeedDurationMs is the raw feed duration in millisecond ticks.
	// NaN on padding rows written by older rigs; zero on padding rows
	// produced here.
	FeedDurationMs float64 `json:"feed_duration_ms" csv:"FeedDuration_ms"`

	// FeedDurationS is FeedDurationMs converted to seconds.
	FeedDurationS float64 `json:"feed_duration_s" csv:"FeedDuration_s"`

	// FeedVolMicrolitres is the raw feed volume in microlitres, from the
	// rig's pump calibration.
	FeedVolMicrolitres float64 `json:"feed_vol_ul" csv:"FeedVol_µl"`

	// FeedVolNanolitres is FeedVolMicrolitres scaled to nanolitres.
	FeedVolNanolitres float64 `json:"feed_vol_nl" csv:"FeedVol_nl"`

	// FeedSpeedNlPerS is the feed speed in nanolitres per second,
	// NaN when the duration is zero or the row is invalid.
	FeedSpeedNlPerS float64 `json:"feed_speed_nl_s" csv:"FeedSpeed_nl/s"`

	// Valid marks a genuinely recorded feed. Padding rows and evaporation
	// artifacts carry Valid=false.
	Valid bool `json:"valid" csv:"Valid"`

	// FoodChoice is the food label of the tube the fly fed from, resolved
	// from the fly's metadata.
	FoodChoice string `json:"food_choice" csv:"FoodChoice"`

	// AvgFeedVolPerFly is FeedVolMicrolitres divided by the number of
	// flies sharing the chamber.
	AvgFeedVolPerFly float64 `json:"avg_feed_vol_per_fly_ul" csv:"AverageFeedVolumePerFly_µl"`

	// AvgFeedCountPerFly is 1/FlyCountInChamber on valid rows, 0 otherwise.
	AvgFeedCountPerFly float64 `json:"avg_feed_count_per_fly" csv:"AverageFeedCountPerFly"`

	// AvgFeedSpeedPerFly is the per-fly attributed feed speed in nl/s.
	AvgFeedSpeedPerFly float64 `json:"avg_feed_speed_per_fly_nl_s" csv:"AverageFeedSpeedPerFly_nl/s"`

	// Metadata fields carried onto the row by the merge step.
	Genotype          string `json:"genotype" csv:"Genotype"`
	Status            Status `json:"status" csv:"Status"`
	Temperature       string `json:"temperature" csv:"Temperature"`
	Sex               string `json:"sex" csv:"Sex"`
	FlyCountInChamber int    `json:"fly_count_in_chamber" csv:"FlyCountInChamber"`
	Tubes             []string `json:"tubes,omitempty"`
	AtLeastOneFeed    bool   `json:"at_least_one_feed" csv:"AtLeastOneFeed"`

	// Labels holds user-attached categorical label values, keyed by label
	// name. Nil until a label is attached.
	Labels map[string]string `json:"labels,omitempty"`
}

// MarshalJSON encodes unrecorded (NaN) measurements as null, since JSON
// has no NaN literal.
func (e FeedEvent) MarshalJSON() ([]byte, error) {
	type alias FeedEvent
	return json.Marshal(struct {
		alias
		RelativeTimeMs     *float64 `json:"relative_time_ms"`
		RelativeTimeS      *float64 `json:"relative_time_s"`
		FeedDurationMs     *float64 `json:"feed_duration_ms"`
		FeedDurationS      *float64 `json:"feed_duration_s"`
		FeedVolMicrolitres *float64 `json:"feed_vol_ul"`
		FeedVolNanolitres  *float64 `json:"feed_vol_nl"`
		FeedSpeedNlPerS    *float64 `json:"feed_speed_nl_s"`
		AvgFeedVolPerFly   *float64 `json:"avg_feed_vol_per_fly_ul"`
		AvgFeedCountPerFly *float64 `json:"avg_feed_count_per_fly"`
		AvgFeedSpeedPerFly *float64 `json:"avg_feed_speed_per_fly_nl_s"`
	}{
		alias:              alias(e),
		RelativeTimeMs:     nullableFloat(e.RelativeTimeMs),
		RelativeTimeS:      nullableFloat(e.RelativeTimeS),
		FeedDurationMs:     nullableFloat(e.FeedDurationMs),
		FeedDurationS:      nullableFloat(e.FeedDurationS),
		FeedVolMicrolitres: nullableFloat(e.FeedVolMicrolitres),
		FeedVolNanolitres:  nullableFloat(e.FeedVolNanolitres),
		FeedSpeedNlPerS:    nullableFloat(e.FeedSpeedNlPerS),
		AvgFeedVolPerFly:   nullableFloat(e.AvgFeedVolPerFly),
		AvgFeedCountPerFly: nullableFloat(e.AvgFeedCountPerFly),
		AvgFeedSpeedPerFly: nullableFloat(e.AvgFeedSpeedPerFly),
	})
}

// nullableFloat maps NaN to a nil pointer for JSON encoding.
func nullableFloat(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

// IsPadding reports whether the event is a synthetic boundary row.
func (e FeedEvent) IsPadding() bool {
	return !e.Valid && e.FeedDurationMs == 0 && e.FeedVolMicrolitres == 0
}

// HasMeasuredVolume reports whether the row carries a real, non-NaN volume.
func (e FeedEvent) HasMeasuredVolume() bool {
	return !math.IsNaN(e.FeedVolMicrolitres)
}

// Clone returns a deep copy of the event, including label values.
func (e FeedEvent) Clone() FeedEvent {
	out := e
	if e.Tubes != nil {
		out.Tubes = append([]string(nil), e.Tubes...)
	}
	if e.Labels != nil {
		out.Labels = make(map[string]string, len(e.Labels))
		for k, v := range e.Labels {
			out.Labels[k] = v
		}
	}
	return out
}
