package config

// Input file naming. Triplet files share a datetime_exptname token; the role
// prefix is the only difference between their names.
const (
	FeedLogPrefix   = "FeedLog"
	MetaDataPrefix  = "MetaData"
	FeedStatsPrefix = "FeedStats"
	CSVExtension    = ".csv"
)

// BundleExtension is the canonical extension for persisted experiment bundles.
const BundleExtension = ".espresso"
