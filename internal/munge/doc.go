// Package munge implements the ESPRESSO data-munging pipeline over the raw
// CRITTA CSV files.
//
// The package contains the five pipeline components, leaves first:
//
// Readers: header-mapped CSV readers for FeedLog, MetaData and FeedStats
// files. Missing measurements become NaN, never silent zeroes.
//
// Column derivers: compute the derived columns (seconds from millisecond
// ticks, nanoliter volumes, feed speed, and the average-per-fly attribution
// columns that normalize measurements across flies sharing one chamber).
//
// PaddingInserter: appends two synthetic boundary rows per (fly, tube) so
// every downstream time-window aggregation has full-domain coverage even for
// flies with zero or sparse real events.
//
// Food-choice assigner: resolves each event's recorded tube index to the
// food label configured for that fly's tube.
//
// Merger: inner-joins event rows to fly metadata on FlyID, enforcing that
// the join keys match exactly on both sides.
//
// The experiment package orchestrates these pieces; nothing in this package
// holds state across calls.
package munge
