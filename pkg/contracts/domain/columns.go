package domain

// Column names of the raw FeedLog CSVs produced by the CRITTA rig.
const (
	ColFlyID          = "FlyID"
	ColChoiceIdx      = "ChoiceIdx"
	ColRelativeTimeMs = "RelativeTime_ms"
	ColFeedDurationMs = "FeedDuration_ms"
	ColFeedVolMicrol  = "FeedVol_µl"
	ColValid          = "Valid"
)

// Column names of the raw MetaData CSVs. Tube columns are numbered
// Tube1, Tube2, ... and matched by the TubePrefix.
const (
	ColID                = "ID"
	ColGenotype          = "Genotype"
	ColTemperature       = "Temperature"
	ColSex               = "Sex"
	ColFlyCountInChamber = "FlyCountInChamber"
	TubePrefix           = "Tube"
)

// Column names of the raw FeedStats CSVs.
const (
	ColMinutes = "Minutes"
)

// Derived column names added by the munging pipeline.
const (
	ColRelativeTimeS        = "RelativeTime_s"
	ColFeedDurationS        = "FeedDuration_s"
	ColFeedVolNl            = "FeedVol_nl"
	ColFeedSpeedNlS         = "FeedSpeed_nl/s"
	ColFoodChoice           = "FoodChoice"
	ColAvgFeedVolPerFly     = "AverageFeedVolumePerFly_µl"
	ColAvgFeedCountPerFly   = "AverageFeedCountPerFly"
	ColAvgFeedSpeedPerFly   = "AverageFeedSpeedPerFly_nl/s"
	ColStatus               = "Status"
	ColAtLeastOneFeed       = "AtLeastOneFeed"
	ColExperimentID         = "ExperimentID"
)

// FeedColumns is the fixed column order of an exported feed table, before
// tube columns and any user-attached label columns.
var FeedColumns = []string{
	ColFlyID,
	ColExperimentID,
	ColChoiceIdx,
	ColRelativeTimeMs,
	ColRelativeTimeS,
	ColFeedDurationMs,
	ColFeedDurationS,
	ColFeedVolMicrol,
	ColFeedVolNl,
	ColFeedSpeedNlS,
	ColValid,
	ColFoodChoice,
	ColAvgFeedVolPerFly,
	ColAvgFeedCountPerFly,
	ColAvgFeedSpeedPerFly,
	ColGenotype,
	ColStatus,
	ColTemperature,
	ColSex,
	ColFlyCountInChamber,
	ColAtLeastOneFeed,
}

// FlyColumns is the fixed column order of an exported fly table, before
// tube columns and any user-attached label columns.
var FlyColumns = []string{
	ColFlyID,
	ColExperimentID,
	ColID,
	ColGenotype,
	ColStatus,
	ColTemperature,
	ColSex,
	ColFlyCountInChamber,
	ColAtLeastOneFeed,
}
