// Package bundle persists a loaded experiment as a single .espresso file: a
// zip archive holding manifest.json, feeds.csv and flies.csv. The manifest
// carries the schema version, table checksums and the session bookkeeping,
// so Open can refuse bundles written by an incompatible toolkit and detect
// tampered or truncated tables instead of misparsing them.
//
// Writes are guarded by an exclusive file lock so two espresso processes
// cannot interleave writes to the same bundle.
package bundle
