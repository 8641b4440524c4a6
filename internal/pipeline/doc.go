// Package pipeline orchestrates load operations: the named sequential steps
// that take a session folder through validation, source reading and table
// assembly, with per-step state, duration tracking and progress broadcast to
// the WebSocket hub. Only one load runs at a time; the experiment service
// installs the resulting aggregate when the pipeline completes.
package pipeline
