// Package files provides file system operations and discovery utilities
// for the ESPRESSO feeding-assay toolkit.
//
// This package contains two main components:
//
// Discovery: Finds the CSV files produced by a CRITTA acquisition session and
// resolves each FeedLog to its MetaData and FeedStats counterparts. The three
// files of a session share a datetime token; only the role prefix differs,
// so resolution is a pure filename rewrite followed by a stat.
//
// Manager: Provides basic file management operations such as copying,
// deleting files, and ensuring directories exist. All operations are relative
// to a base path to maintain portability.
//
// Example usage:
//
//	// Create a discovery instance
//	discovery := files.NewDiscovery("/path/to/base")
//
//	// Resolve all assay triplets in a session folder
//	triplets, err := discovery.FindTriplets("input", true)
//
//	// Create a manager instance
//	manager := files.NewManager(paths)
//
//	// Check if file exists
//	if manager.FileExists("exports/feeds.csv") {
//	    // Process file
//	}
package files
