package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioTable() DistrictTable {
	return DistrictTable{
		{Department: "X", Province: "P", District: "A", Mean: -5},
		{Department: "X", Province: "P", District: "B", Mean: 10},
		{Department: "Y", Province: "Q", District: "C", Mean: 2},
	}
}

func TestAggregateByDepartment(t *testing.T) {
	t.Run("scenario grouping", func(t *testing.T) {
		aggs := AggregateByDepartment(scenarioTable())
		require.Len(t, aggs, 2)

		x, y := aggs[0], aggs[1]
		assert.Equal(t, "X", x.Department)
		assert.Equal(t, 2, x.Count)
		assert.InDelta(t, 2.5, x.MeanOfMeans, 1e-9)
		assert.InDelta(t, -5, x.Min, 1e-9)
		assert.InDelta(t, 10, x.Max, 1e-9)
		// sample std of {-5, 10}: sqrt(112.5)
		assert.InDelta(t, math.Sqrt(112.5), x.StdOfMeans, 1e-9)

		assert.Equal(t, "Y", y.Department)
		assert.Equal(t, 1, y.Count)
		assert.InDelta(t, 2, y.MeanOfMeans, 1e-9)
		assert.Zero(t, y.StdOfMeans)
	})

	t.Run("counts over all groups sum to table size", func(t *testing.T) {
		table := DistrictTable{
			{Department: "PUNO", Province: "P", District: "A", Mean: -6},
			{Department: "PUNO", Province: "P", District: "B", Mean: -2},
			{Department: "CUSCO", Province: "Q", District: "C", Mean: 1},
			{Department: "LORETO", Province: "R", District: "D", Mean: 22},
			{Department: "LORETO", Province: "R", District: "E", Mean: 20},
		}
		total := 0
		for _, agg := range AggregateByDepartment(table) {
			total += agg.Count
		}
		assert.Equal(t, len(table), total)
	})

	t.Run("missing means are excluded but reported", func(t *testing.T) {
		table := DistrictTable{
			{Department: "X", Province: "P", District: "A", Mean: -5},
			{Department: "X", Province: "P", District: "B", Mean: math.NaN()},
		}
		aggs := AggregateByDepartment(table)
		require.Len(t, aggs, 1)

		assert.Equal(t, 1, aggs[0].Count)
		assert.Equal(t, 1, aggs[0].Missing)
		assert.InDelta(t, -5, aggs[0].MeanOfMeans, 1e-9)
	})

	t.Run("group with no valid mean reports NaN statistics", func(t *testing.T) {
		table := DistrictTable{
			{Department: "X", Province: "P", District: "A", Mean: math.NaN()},
		}
		aggs := AggregateByDepartment(table)
		require.Len(t, aggs, 1)
		assert.Zero(t, aggs[0].Count)
		assert.True(t, math.IsNaN(aggs[0].MeanOfMeans))
		assert.True(t, math.IsNaN(aggs[0].Min))
	})

	t.Run("deterministic ascending department order", func(t *testing.T) {
		table := DistrictTable{
			{Department: "Y", Province: "Q", District: "C", Mean: 2},
			{Department: "X", Province: "P", District: "A", Mean: -5},
		}
		aggs := AggregateByDepartment(table)
		require.Len(t, aggs, 2)
		assert.Equal(t, "X", aggs[0].Department)
		assert.Equal(t, "Y", aggs[1].Department)
	})
}

func TestMostAffectedDepartment(t *testing.T) {
	t.Run("largest high-risk count wins", func(t *testing.T) {
		table := DistrictTable{
			{Department: "PUNO", Province: "P", District: "A", Mean: -6},
			{Department: "PUNO", Province: "P", District: "B", Mean: -5},
			{Department: "CUSCO", Province: "Q", District: "C", Mean: -4},
			{Department: "CUSCO", Province: "Q", District: "D", Mean: 9},
		}
		dept, n := MostAffectedDepartment(table, 0)
		assert.Equal(t, "PUNO", dept)
		assert.Equal(t, 2, n)
	})

	t.Run("ties break by ascending department", func(t *testing.T) {
		table := DistrictTable{
			{Department: "PUNO", Province: "P", District: "A", Mean: -6},
			{Department: "CUSCO", Province: "Q", District: "C", Mean: -4},
		}
		dept, n := MostAffectedDepartment(table, 0)
		assert.Equal(t, "CUSCO", dept)
		assert.Equal(t, 1, n)
	})

	t.Run("no high-risk districts", func(t *testing.T) {
		dept, n := MostAffectedDepartment(scenarioTable(), -100)
		assert.Empty(t, dept)
		assert.Zero(t, n)
	})
}
