package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"espresso/pkg/contracts/domain"
)

// renderSummary formats an experiment summary as a two-column table.
func renderSummary(summary domain.ExperimentSummary) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Feedlogs", summary.FeedlogCount},
		{"Flies", summary.FlyCount},
		{"Feed rows", summary.FeedRowCount},
		{"Genotypes", joinOrDash(summary.Genotypes)},
		{"Temperatures", joinOrDash(summary.Temperatures)},
		{"Sexes", joinOrDash(summary.Sexes)},
		{"Foodtypes", joinOrDash(summary.Foodtypes)},
		{"Duration", fmt.Sprintf("%g min", summary.DurationSeconds/60)},
		{"Labels", joinOrDash(summary.AddedLabels)},
		{"Version", summary.Version},
	})
	return t.Render()
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
