package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	tests := []struct {
		name     string
		observed []string
		want     []string
	}{
		{
			name:     "sorts and deduplicates",
			observed: []string{"w1118;gal4", "w1118", "w1118;gal4", "cs"},
			want:     []string{"cs", "w1118", "w1118;gal4"},
		},
		{
			name:     "drops empty values",
			observed: []string{"29C", "", "22C"},
			want:     []string{"22C", "29C"},
		},
		{
			name:     "empty input",
			observed: nil,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := NewCategory("Genotype", tt.observed)
			assert.Equal(t, tt.want, cat.Values())
			assert.Equal(t, len(tt.want), cat.Len())
		})
	}
}

func TestCategoryOrdinal(t *testing.T) {
	cat := NewCategory("Temperature", []string{"29C", "22C", "25C"})

	i, err := cat.Ordinal("25C")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = cat.Ordinal("31C")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a member")
	assert.Contains(t, err.Error(), "Temperature")
}

func TestNewFixedCategory(t *testing.T) {
	t.Run("keeps the given order", func(t *testing.T) {
		cat, err := NewFixedCategory("Status", StatusOrder)
		require.NoError(t, err)
		assert.Equal(t, []string{"Sibling", "Offspring"}, cat.Values())

		i, err := cat.Ordinal("Offspring")
		require.NoError(t, err)
		assert.Equal(t, 1, i)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := NewFixedCategory("Status", []string{"Sibling", "Sibling"})
		require.Error(t, err)
	})
}

func TestCategoryUnion(t *testing.T) {
	a := NewCategory("Genotype", []string{"w1118", "cs"})
	b := NewCategory("Genotype", []string{"w1118", "yw"})

	merged := a.Union(b)
	assert.Equal(t, []string{"cs", "w1118", "yw"}, merged.Values())

	// The inputs are untouched.
	assert.Equal(t, []string{"cs", "w1118"}, a.Values())
	assert.Equal(t, []string{"w1118", "yw"}, b.Values())
}

func TestCategoryValuesIsACopy(t *testing.T) {
	cat := NewCategory("Sex", []string{"F", "M"})
	vals := cat.Values()
	vals[0] = "mutated"

	assert.Equal(t, []string{"F", "M"}, cat.Values())
}
