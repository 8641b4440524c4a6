package domain

import (
	"math"
	"strconv"
	"strings"
)

// Column returns the fly's value for a named column. Tube columns resolve by
// number ("Tube1" is Tubes[0]) and user-attached labels resolve by label
// name. The second return is false for columns the row does not carry.
func (f Fly) Column(col string) (interface{}, bool) {
	switch col {
	case ColFlyID:
		return f.FlyID, true
	case ColExperimentID:
		return f.ExperimentID, true
	case ColID:
		return f.ID, true
	case ColGenotype:
		return f.Genotype, true
	case ColStatus:
		return string(f.Status), true
	case ColTemperature:
		return f.Temperature, true
	case ColSex:
		return f.Sex, true
	case ColFlyCountInChamber:
		return f.FlyCountInChamber, true
	case ColAtLeastOneFeed:
		return f.AtLeastOneFeed, true
	}
	if n, ok := tubeNumber(col); ok && n <= len(f.Tubes) {
		return f.Tubes[n-1], true
	}
	if v, ok := f.Labels[col]; ok {
		return v, true
	}
	return nil, false
}

// Column returns the event's value for a named column, including the
// metadata columns carried onto the row by the merge step. Tube columns and
// user-attached labels resolve the same way as on Fly.
func (e FeedEvent) Column(col string) (interface{}, bool) {
	switch col {
	case ColFlyID:
		return e.FlyID, true
	case ColExperimentID:
		return e.ExperimentID, true
	case ColChoiceIdx:
		return e.ChoiceIdx, true
	case ColRelativeTimeMs:
		return e.RelativeTimeMs, true
	case ColRelativeTimeS:
		return e.RelativeTimeS, true
	case ColFeedDurationMs:
		return e.FeedDurationMs, true
	case ColFeedDurationS:
		return e.FeedDurationS, true
	case ColFeedVolMicrol:
		return e.FeedVolMicrolitres, true
	case ColFeedVolNl:
		return e.FeedVolNanolitres, true
	case ColFeedSpeedNlS:
		return e.FeedSpeedNlPerS, true
	case ColValid:
		return e.Valid, true
	case ColFoodChoice:
		return e.FoodChoice, true
	case ColAvgFeedVolPerFly:
		return e.AvgFeedVolPerFly, true
	case ColAvgFeedCountPerFly:
		return e.AvgFeedCountPerFly, true
	case ColAvgFeedSpeedPerFly:
		return e.AvgFeedSpeedPerFly, true
	case ColGenotype:
		return e.Genotype, true
	case ColStatus:
		return string(e.Status), true
	case ColTemperature:
		return e.Temperature, true
	case ColSex:
		return e.Sex, true
	case ColFlyCountInChamber:
		return e.FlyCountInChamber, true
	case ColAtLeastOneFeed:
		return e.AtLeastOneFeed, true
	}
	if n, ok := tubeNumber(col); ok && n <= len(e.Tubes) {
		return e.Tubes[n-1], true
	}
	if v, ok := e.Labels[col]; ok {
		return v, true
	}
	return nil, false
}

// IsTubeColumn reports whether a column name follows the "Tube{n}" pattern
// of the metadata sheets.
func IsTubeColumn(col string) bool {
	_, ok := tubeNumber(col)
	return ok
}

// tubeNumber extracts the 1-based tube number from a "Tube{n}" column name.
func tubeNumber(col string) (int, bool) {
	if !strings.HasPrefix(col, TubePrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(col, TubePrefix))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// FormatColumnValue renders a column value in the canonical text form used
// by CSV tables: booleans as "True"/"False" and NaN as the empty cell, so
// written tables read back the way they were produced.
func FormatColumnValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(val)
	case float64:
		if math.IsNaN(val) {
			return ""
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case nil:
		return ""
	default:
		return ""
	}
}
