package domain

import (
	"fmt"
	"strings"
)

// ExperimentSummary describes a loaded experiment at a glance. It is what
// the CLI prints, the HTTP API returns from GET /api/experiment, and the
// bundle manifest embeds.
type ExperimentSummary struct {
	FeedlogCount    int      `json:"feedlog_count"`
	FlyCount        int      `json:"fly_count"`
	FeedRowCount    int      `json:"feed_row_count"`
	Genotypes       []string `json:"genotypes"`
	Temperatures    []string `json:"temperatures"`
	Sexes           []string `json:"sexes,omitempty"`
	Foodtypes       []string `json:"foodtypes"`
	DurationSeconds float64  `json:"duration_seconds"`
	AddedLabels     []string `json:"added_labels,omitempty"`
	Version         string   `json:"version"`
}

// String renders the summary as the multi-line report shown in analysis
// sessions.
func (s ExperimentSummary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d feedlog%s with a total of %d flies.\n",
		s.FeedlogCount, plural(s.FeedlogCount), s.FlyCount)
	fmt.Fprintf(&b, "\n%d genotype%s %v.\n",
		len(s.Genotypes), plural(len(s.Genotypes)), s.Genotypes)
	fmt.Fprintf(&b, "\n%d temperature%s %v.\n",
		len(s.Temperatures), plural(len(s.Temperatures)), s.Temperatures)
	fmt.Fprintf(&b, "\n%d foodtype%s %v.\n",
		len(s.Foodtypes), plural(len(s.Foodtypes)), s.Foodtypes)
	if len(s.Sexes) > 0 {
		fmt.Fprintf(&b, "\n%d sex type%s %v.\n",
			len(s.Sexes), plural(len(s.Sexes)), s.Sexes)
	}
	if s.DurationSeconds > 0 {
		fmt.Fprintf(&b, "\nTotal experiment duration = %g minutes\n", s.DurationSeconds/60)
	}
	if len(s.AddedLabels) > 0 {
		verb := " has"
		if len(s.AddedLabels) > 1 {
			verb = "s have"
		}
		fmt.Fprintf(&b, "\n%d label%s been added: %v", len(s.AddedLabels), verb, s.AddedLabels)
	}
	fmt.Fprintf(&b, "\nESPRESSO v%s", s.Version)

	return b.String()
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
