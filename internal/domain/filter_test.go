package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestFilterApply(t *testing.T) {
	table := DistrictTable{
		{Department: "PUNO", Province: "P", District: "ACORA", Mean: -4},
		{Department: "PUNO", Province: "P", District: "ZEPITA", Mean: 1},
		{Department: "LORETO", Province: "R", District: "IQUITOS", Mean: 22},
		{Department: "LORETO", Province: "R", District: "NAUTA", Mean: math.NaN()},
	}

	t.Run("empty filter is a no-op copy", func(t *testing.T) {
		got := Filter{}.Apply(table)
		assert.Equal(t, table, got)
	})

	t.Run("department match", func(t *testing.T) {
		got := Filter{Department: "PUNO"}.Apply(table)
		assert.Equal(t, []string{"ACORA", "ZEPITA"}, districtNames(got))
	})

	t.Run("unknown department yields empty, not error", func(t *testing.T) {
		assert.Empty(t, Filter{Department: "MORDOR"}.Apply(table))
	})

	t.Run("range is inclusive at both ends", func(t *testing.T) {
		got := Filter{Range: &TempRange{Lo: -4, Hi: 1}}.Apply(table)
		assert.Equal(t, []string{"ACORA", "ZEPITA"}, districtNames(got))
	})

	t.Run("inverted range is defined empty", func(t *testing.T) {
		assert.Empty(t, Filter{Range: &TempRange{Lo: 5, Hi: -5}}.Apply(table))
	})

	t.Run("custom threshold", func(t *testing.T) {
		got := Filter{MaxMean: floatPtr(1)}.Apply(table)
		assert.Equal(t, []string{"ACORA", "ZEPITA"}, districtNames(got))
	})

	t.Run("predicates compound with AND", func(t *testing.T) {
		got := Filter{
			Department: "PUNO",
			Range:      &TempRange{Lo: -10, Hi: 10},
			MaxMean:    floatPtr(0),
		}.Apply(table)
		require.Len(t, got, 1)
		assert.Equal(t, "ACORA", got[0].District)
	})

	t.Run("missing means never match numeric predicates", func(t *testing.T) {
		got := Filter{Range: &TempRange{Lo: -100, Hi: 100}}.Apply(table)
		assert.NotContains(t, districtNames(got), "NAUTA")

		got = Filter{Department: "LORETO"}.Apply(table)
		assert.Contains(t, districtNames(got), "NAUTA")
	})

	t.Run("source order preserved", func(t *testing.T) {
		got := Filter{Range: &TempRange{Lo: -10, Hi: 30}}.Apply(table)
		assert.Equal(t, []string{"ACORA", "ZEPITA", "IQUITOS"}, districtNames(got))
	})
}
