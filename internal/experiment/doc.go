// Package experiment owns the top-level aggregate of the toolkit: one loaded
// ESPRESSO assay session, holding the merged feed table, the fly metadata
// table and the categorical axes built from them.
//
// Load runs the whole pipeline in one call:
//
//	exp, err := experiment.Load(ctx, "data/session-2017-09-06", experiment.LoadOptions{})
//
// Callers that want per-phase progress (the server does, for WebSocket
// updates) drive a Loader through its three phases instead:
//
//	loader := experiment.NewLoader(folder, opts)
//	err = loader.Validate(ctx)
//	err = loader.ReadSources(ctx, onProgress)
//	exp, err = loader.Assemble(ctx)
//
// An Experiment is immutable after assembly except through the explicit
// label operations. Accessors return deep copies, so callers can never
// corrupt the aggregate through a returned slice.
package experiment
