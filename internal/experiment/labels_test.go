package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts/domain"
)

func TestAttachFixedLabel(t *testing.T) {
	exp := loadSession(t)

	require.NoError(t, exp.AttachLabel("Batch", domain.FixedLabel("B1")))

	assert.Equal(t, []string{"Batch"}, exp.AddedLabels())
	for _, fly := range exp.Flies() {
		assert.Equal(t, "B1", fly.Labels["Batch"])
	}
	for _, event := range exp.Feeds() {
		assert.Equal(t, "B1", event.Labels["Batch"])
	}
}

func TestAttachDerivedLabel(t *testing.T) {
	exp := loadSession(t)

	require.NoError(t, exp.AttachLabel("Condition",
		domain.DerivedLabel("_", domain.ColGenotype, domain.ColTemperature)))

	for _, fly := range exp.Flies() {
		assert.Equal(t, fly.Genotype+"_22", fly.Labels["Condition"])
	}
	for _, event := range exp.Feeds() {
		assert.Equal(t, event.Genotype+"_22", event.Labels["Condition"])
	}
}

func TestAttachDerivedLabelSkipsUnrecordedComponents(t *testing.T) {
	exp := loadSession(t)

	// Fly3 has no recorded sex, so its value joins the remaining component
	// only; no separator is left dangling.
	require.NoError(t, exp.AttachLabel("SexTemp",
		domain.DerivedLabel(",", domain.ColSex, domain.ColTemperature)))

	for _, fly := range exp.Flies() {
		want := fly.Sex + ",22"
		if fly.Sex == "" {
			want = "22"
		}
		assert.Equal(t, want, fly.Labels["SexTemp"], "fly %s", fly.FlyID)
	}
}

func TestAttachLabelReplacesExistingValues(t *testing.T) {
	exp := loadSession(t)

	require.NoError(t, exp.AttachLabel("Batch", domain.FixedLabel("B1")))
	require.NoError(t, exp.AttachLabel("Batch", domain.FixedLabel("B2")))

	assert.Equal(t, []string{"Batch"}, exp.AddedLabels(), "re-attach does not duplicate")
	for _, fly := range exp.Flies() {
		assert.Equal(t, "B2", fly.Labels["Batch"])
	}
}

func TestAttachLabelErrors(t *testing.T) {
	exp := loadSession(t)

	tests := []struct {
		name  string
		label string
		spec  domain.LabelSpec
	}{
		{
			name:  "empty name",
			label: "  ",
			spec:  domain.FixedLabel("x"),
		},
		{
			name:  "core column collision",
			label: domain.ColGenotype,
			spec:  domain.FixedLabel("x"),
		},
		{
			name:  "tube column collision",
			label: "Tube1",
			spec:  domain.FixedLabel("x"),
		},
		{
			name:  "both variants set",
			label: "Batch",
			spec:  domain.LabelSpec{Kind: domain.LabelFixed, Value: "x", Columns: []string{domain.ColSex}},
		},
		{
			name:  "neither variant set",
			label: "Batch",
			spec:  domain.LabelSpec{Kind: domain.LabelFixed},
		},
		{
			name:  "column not in metadata",
			label: "Batch",
			spec:  domain.DerivedLabel(",", "Lifespan"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exp.AttachLabel(tt.label, tt.spec)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUserInput))
			assert.Empty(t, exp.AddedLabels(), "failed attach must not change the aggregate")
		})
	}
}

func TestRemoveLabelsRoundTrip(t *testing.T) {
	exp := loadSession(t)
	originalFlies := exp.Flies()

	require.NoError(t, exp.AttachLabel("Batch", domain.FixedLabel("B1")))
	require.NoError(t, exp.AttachLabel("Rig", domain.FixedLabel("left")))
	require.NoError(t, exp.RemoveLabels("Batch", "Rig"))

	assert.Empty(t, exp.AddedLabels())
	assert.Equal(t, originalFlies, exp.Flies(), "column set restored exactly")
	for _, event := range exp.Feeds() {
		assert.Nil(t, event.Labels)
	}
}

func TestRemoveLabelsPartial(t *testing.T) {
	exp := loadSession(t)

	require.NoError(t, exp.AttachLabel("Batch", domain.FixedLabel("B1")))
	require.NoError(t, exp.AttachLabel("Rig", domain.FixedLabel("left")))
	require.NoError(t, exp.RemoveLabels("Batch"))

	assert.Equal(t, []string{"Rig"}, exp.AddedLabels())
	for _, fly := range exp.Flies() {
		assert.Equal(t, "left", fly.Labels["Rig"])
		_, hasBatch := fly.Labels["Batch"]
		assert.False(t, hasBatch)
	}
}

func TestRemoveLabelsErrors(t *testing.T) {
	exp := loadSession(t)

	err := exp.RemoveLabels("Batch")
	require.Error(t, err, "nothing attached yet")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUserInput))

	require.NoError(t, exp.AttachLabel("Batch", domain.FixedLabel("B1")))

	err = exp.RemoveLabels("Batch", "Ghost")
	require.Error(t, err, "unknown label in the list")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUserInput))
	assert.Equal(t, []string{"Batch"}, exp.AddedLabels(), "nothing removed on error")
}

func TestRemoveAllLabels(t *testing.T) {
	exp := loadSession(t)

	_, err := exp.RemoveAllLabels()
	require.Error(t, err, "nothing attached yet")

	require.NoError(t, exp.AttachLabel("Batch", domain.FixedLabel("B1")))
	require.NoError(t, exp.AttachLabel("Rig", domain.FixedLabel("left")))

	removed, err := exp.RemoveAllLabels()
	require.NoError(t, err)
	assert.Equal(t, []string{"Batch", "Rig"}, removed)
	assert.Empty(t, exp.AddedLabels())
}

func TestSummaryReportsLabels(t *testing.T) {
	exp := loadSession(t)
	require.NoError(t, exp.AttachLabel("Batch", domain.FixedLabel("B1")))

	summary := exp.Summary()
	assert.Equal(t, 1, summary.FeedlogCount)
	assert.Equal(t, 3, summary.FlyCount)
	assert.Equal(t, []string{"Batch"}, summary.AddedLabels)
	assert.Equal(t, 1800.0, summary.DurationSeconds)
	assert.Contains(t, summary.String(), "1 feedlog with a total of 3 flies")
	assert.Contains(t, summary.String(), "1 label has been added")
}
