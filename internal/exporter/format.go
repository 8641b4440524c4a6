package exporter

import (
	"math"
	"strconv"
)

// formatFloat renders a measurement for CSV output. NaN means unmeasured
// and becomes the empty cell, so exported views read back the way the
// tables do.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
