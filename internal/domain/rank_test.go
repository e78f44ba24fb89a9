package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func districtNames(table DistrictTable) []string {
	names := make([]string, len(table))
	for i, r := range table {
		names[i] = r.District
	}
	return names
}

func TestTopK(t *testing.T) {
	t.Run("coldest first when ascending", func(t *testing.T) {
		top := TopK(scenarioTable(), 1, true)
		require.Len(t, top, 1)
		assert.Equal(t, "A", top[0].District)
	})

	t.Run("warmest first when descending", func(t *testing.T) {
		top := TopK(scenarioTable(), 2, false)
		assert.Equal(t, []string{"B", "C"}, districtNames(top))
	})

	t.Run("k of zero is empty, not an error", func(t *testing.T) {
		assert.Empty(t, TopK(scenarioTable(), 0, true))
		assert.Empty(t, TopK(scenarioTable(), -3, true))
	})

	t.Run("k beyond table size is capped", func(t *testing.T) {
		assert.Len(t, TopK(scenarioTable(), 99, true), 3)
	})

	t.Run("both directions reconstruct the full ordering", func(t *testing.T) {
		table := DistrictTable{
			{Department: "X", Province: "P", District: "D", Mean: 4},
			{Department: "X", Province: "P", District: "A", Mean: -1},
			{Department: "Y", Province: "Q", District: "C", Mean: 9},
			{Department: "Y", Province: "Q", District: "B", Mean: 0},
		}
		asc := TopK(table, len(table), true)
		desc := TopK(table, len(table), false)

		require.Len(t, desc, len(asc))
		for i := range asc {
			assert.Equal(t, asc[i], desc[len(desc)-1-i])
		}
		assert.Equal(t, []string{"A", "B", "D", "C"}, districtNames(asc))
	})

	t.Run("equal means break by ascending district name", func(t *testing.T) {
		table := DistrictTable{
			{Department: "X", Province: "P", District: "ZEPITA", Mean: -4},
			{Department: "X", Province: "P", District: "ACORA", Mean: -4},
		}
		assert.Equal(t, []string{"ACORA", "ZEPITA"}, districtNames(TopK(table, 2, true)))
		assert.Equal(t, []string{"ACORA", "ZEPITA"}, districtNames(TopK(table, 2, false)))
	})

	t.Run("missing means are excluded from rankings", func(t *testing.T) {
		table := DistrictTable{
			{Department: "X", Province: "P", District: "A", Mean: math.NaN()},
			{Department: "X", Province: "P", District: "B", Mean: 3},
		}
		top := TopK(table, 5, true)
		require.Len(t, top, 1)
		assert.Equal(t, "B", top[0].District)
	})
}

func TestSortByMean(t *testing.T) {
	t.Run("does not mutate the source table", func(t *testing.T) {
		table := scenarioTable()
		_ = SortByMean(table, true)
		assert.Equal(t, []string{"A", "B", "C"}, districtNames(table))
	})
}
