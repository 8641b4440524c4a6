package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeFlyID(t *testing.T) {
	tests := []struct {
		name         string
		experimentID string
		id           int
		want         string
	}{
		{
			name:         "standard token",
			experimentID: "0911-1403_SecondRun",
			id:           3,
			want:         "0911-1403_SecondRun_Fly3",
		},
		{
			name:         "single digit id",
			experimentID: "0110-0900_FirstRun",
			id:           1,
			want:         "0110-0900_FirstRun_Fly1",
		},
		{
			name:         "double digit id",
			experimentID: "0110-0900_FirstRun",
			id:           12,
			want:         "0110-0900_FirstRun_Fly12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeFlyID(tt.experimentID, tt.id))
		})
	}
}

func TestNormalizeGenotype(t *testing.T) {
	tests := []struct {
		name     string
		genotype string
		want     string
	}{
		{
			name:     "uppercase white gene",
			genotype: "W1118",
			want:     "w1118",
		},
		{
			name:     "iii spelled out",
			genotype: "wiii8",
			want:     "w1118",
		},
		{
			name:     "already normalized",
			genotype: "w1118;gal4-OK371",
			want:     "w1118;gal4-OK371",
		},
		{
			name:     "mixed fixes in one string",
			genotype: "Wiii8",
			want:     "w1118",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeGenotype(tt.genotype))
		})
	}
}

func TestStatusFromGenotype(t *testing.T) {
	tests := []struct {
		name     string
		genotype string
		want     Status
	}{
		{
			name:     "w1118 background is sibling",
			genotype: "w1118",
			want:     StatusSibling,
		},
		{
			name:     "w1118 with driver is sibling",
			genotype: "w1118;gal4-OK371",
			want:     StatusSibling,
		},
		{
			name:     "other genotype is offspring",
			genotype: "yw;sens-gal4",
			want:     StatusOffspring,
		},
		{
			name:     "w1118 not at the start is offspring",
			genotype: "yv;w1118-ctrl",
			want:     StatusOffspring,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFromGenotype(tt.genotype))
		})
	}
}

func TestFlyFoodChoice(t *testing.T) {
	fly := Fly{
		FlyID: "0911-1403_SecondRun_Fly1",
		Tubes: []string{"5% sucrose", "5% sucrose + 100mM NaCl"},
	}

	t.Run("first tube", func(t *testing.T) {
		label, err := fly.FoodChoice(0)
		require.NoError(t, err)
		assert.Equal(t, "5% sucrose", label)
	})

	t.Run("second tube", func(t *testing.T) {
		label, err := fly.FoodChoice(1)
		require.NoError(t, err)
		assert.Equal(t, "5% sucrose + 100mM NaCl", label)
	})

	t.Run("index beyond configured tubes", func(t *testing.T) {
		_, err := fly.FoodChoice(2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no tube 3")
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := fly.FoodChoice(-1)
		require.Error(t, err)
	})

	t.Run("unconfigured tube", func(t *testing.T) {
		gappy := Fly{FlyID: "f", Tubes: []string{"sucrose", ""}}
		_, err := gappy.FoodChoice(1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no food label")
	})
}

func TestFlyClone(t *testing.T) {
	fly := Fly{
		FlyID:  "0911-1403_SecondRun_Fly1",
		Tubes:  []string{"sucrose"},
		Labels: map[string]string{"Batch": "B1"},
	}

	clone := fly.Clone()
	clone.Tubes[0] = "changed"
	clone.Labels["Batch"] = "B2"

	assert.Equal(t, "sucrose", fly.Tubes[0])
	assert.Equal(t, "B1", fly.Labels["Batch"])
}
