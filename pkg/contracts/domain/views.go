package domain

import "encoding/json"

// DefaultViewGroupColumns is the grouping used by the per-fly contrast
// views: one output row per fly, keyed by its experimental condition.
var DefaultViewGroupColumns = []string{ColTemperature, ColGenotype, ColFoodChoice, ColFlyID}

// FeedTotalsRow is one row of the per-fly feed-totals view consumed by the
// statistics collaborator. Unrecorded (NaN) measurements count as zero, so
// padding keeps every fly's row present with zero totals.
type FeedTotalsRow struct {
	Temperature string `json:"temperature" csv:"Temperature"`
	Genotype    string `json:"genotype" csv:"Genotype"`
	FoodChoice  string `json:"food_choice" csv:"FoodChoice"`
	FlyID       string `json:"fly_id" csv:"FlyID"`

	// TotalFeedCountPerFly is the sum of the per-fly attributed feed
	// counts, fractional when flies share a chamber.
	TotalFeedCountPerFly float64 `json:"total_feed_count_per_fly" csv:"TotalFeedCountPerFly"`

	// TotalFeedVolumePerFly is the per-fly attributed feed volume in
	// microlitres.
	TotalFeedVolumePerFly float64 `json:"total_feed_volume_per_fly_ul" csv:"TotalFeedVolumePerFly_µl"`

	// TotalTimeFeedingPerFly is the total feeding time in minutes.
	TotalTimeFeedingPerFly float64 `json:"total_time_feeding_per_fly_min" csv:"TotalTimeFeedingPerFly_min"`

	// FeedSpeedPerFly is the overall feed speed in nl/s, the ratio of the
	// fly's total attributed volume to its total feeding time. NaN when
	// the fly never fed.
	FeedSpeedPerFly float64 `json:"feed_speed_per_fly_nl_s" csv:"FeedSpeedPerFly_nl/s"`
}

// MarshalJSON encodes the NaN speed of a never-feeding fly as null.
func (r FeedTotalsRow) MarshalJSON() ([]byte, error) {
	type alias FeedTotalsRow
	return json.Marshal(struct {
		alias
		FeedSpeedPerFly *float64 `json:"feed_speed_per_fly_nl_s"`
	}{
		alias:           alias(r),
		FeedSpeedPerFly: nullableFloat(r.FeedSpeedPerFly),
	})
}

// LatencyRow is one row of the latency-to-first-feed view. Only valid feed
// events count; a fly that never fed has no latency row.
type LatencyRow struct {
	Temperature string `json:"temperature" csv:"Temperature"`
	Genotype    string `json:"genotype" csv:"Genotype"`
	FoodChoice  string `json:"food_choice" csv:"FoodChoice"`
	FlyID       string `json:"fly_id" csv:"FlyID"`

	// LatencyToFirstFeed is the time of the fly's first valid feed, in
	// minutes since experiment start.
	LatencyToFirstFeed float64 `json:"latency_to_first_feed_min" csv:"LatencyToFirstFeed_min"`
}

// PercentFeedingRow is one row of the percent-feeding summary: for one
// member of the grouping column, the share of flies with at least one valid
// feed inside the queried time window, with a 95% confidence interval on
// the proportion.
type PercentFeedingRow struct {
	Group          string  `json:"group" csv:"Group"`
	FliesTotal     int     `json:"flies_total" csv:"FliesTotal"`
	FliesFeeding   int     `json:"flies_feeding" csv:"FliesFeeding"`
	PercentFeeding float64 `json:"percent_feeding" csv:"PercentFeeding"`
	CILower        float64 `json:"ci_lower" csv:"CILower"`
	CIUpper        float64 `json:"ci_upper" csv:"CIUpper"`
}
