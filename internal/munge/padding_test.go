package munge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"espresso/pkg/contracts/domain"
)

func TestAddPadRows(t *testing.T) {
	flies := []domain.Fly{
		{
			FlyID:        "expt_Fly1",
			ExperimentID: "expt",
			Tubes:        []string{"5% sucrose"},
		},
		{
			FlyID:        "expt_Fly2",
			ExperimentID: "expt",
			Tubes:        []string{"5% sucrose", "10% yeast"},
		},
	}
	events := []domain.FeedEvent{
		{FlyID: "expt_Fly1", RelativeTimeMs: 60000, FeedDurationMs: 2500, FeedVolMicrolitres: 0.02, Valid: true},
	}

	inserter := NewPaddingInserter()
	padded, stats := inserter.AddPadRowsWithStats(flies, events, 7200)

	// 2 rows per (fly, configured tube): Fly1 has 1 tube, Fly2 has 2.
	assert.Equal(t, 1+2*(1+2), len(padded))
	assert.Equal(t, 6, stats.PadRows)
	assert.Equal(t, 2, stats.FliesPadded)
	assert.Equal(t, 1, stats.TubesPerFly["expt_Fly1"])
	assert.Equal(t, 2, stats.TubesPerFly["expt_Fly2"])
	assert.Equal(t, len(padded), stats.TotalRows)

	// The original event is untouched at the front.
	assert.True(t, padded[0].Valid)

	for _, row := range padded[1:] {
		assert.False(t, row.Valid)
		assert.True(t, row.IsPadding())
		assert.Equal(t, 0.0, row.FeedDurationMs)
		assert.Equal(t, 0.0, row.FeedVolMicrolitres)
		assert.Contains(t, []float64{0, 7200 * 1000}, row.RelativeTimeMs)
	}
}

func TestAddPadRowsBoundaries(t *testing.T) {
	flies := []domain.Fly{
		{FlyID: "expt_Fly1", ExperimentID: "expt", Tubes: []string{"sucrose"}},
	}

	inserter := NewPaddingInserter()
	padded := inserter.AddPadRows(flies, nil, 3600)

	require.Len(t, padded, 2)
	assert.Equal(t, 0.0, padded[0].RelativeTimeMs)
	assert.Equal(t, 3600*1000.0, padded[1].RelativeTimeMs)
	assert.Equal(t, "expt_Fly1", padded[0].FlyID)
	assert.Equal(t, 0, padded[0].ChoiceIdx)
}

func TestAddPadRowsSkipsUnconfiguredTubes(t *testing.T) {
	flies := []domain.Fly{
		{FlyID: "expt_Fly1", ExperimentID: "expt", Tubes: []string{"sucrose", ""}},
		{FlyID: "expt_Fly2", ExperimentID: "expt", Tubes: []string{"", ""}},
	}

	inserter := NewPaddingInserter()
	padded, stats := inserter.AddPadRowsWithStats(flies, nil, 3600)

	// Only Fly1's first tube is configured.
	assert.Len(t, padded, 2)
	assert.Equal(t, 1, stats.FliesPadded)
	assert.NotContains(t, stats.TubesPerFly, "expt_Fly2")

	for _, row := range padded {
		assert.Equal(t, "expt_Fly1", row.FlyID)
		assert.Equal(t, 0, row.ChoiceIdx)
	}
}

func TestAddPadRowsEmptyInput(t *testing.T) {
	inserter := NewPaddingInserter()

	padded, stats := inserter.AddPadRowsWithStats(nil, nil, 3600)
	assert.Empty(t, padded)
	assert.Equal(t, 0, stats.PadRows)
	assert.Equal(t, 0, stats.TotalRows)
}
