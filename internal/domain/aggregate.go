package domain

import (
	"math"
	"sort"

	"github.com/samber/lo"
)

// DepartmentAggregate summarizes the district means of one department.
//
// Aggregation is unweighted: each district contributes one value regardless
// of its pixel count, even though the underlying phenomenon is area-weighted.
// That matches the upstream methodology and is a documented limitation, not
// an accident; PixelCount is carried on the records so a weighted variant can
// be added without a schema change.
type DepartmentAggregate struct {
	Department  string
	Count       int     // districts with a valid mean
	Missing     int     // districts excluded for a malformed mean
	MeanOfMeans float64 // unweighted mean of district means, °C
	StdOfMeans  float64 // sample standard deviation (0 when Count < 2)
	Min         float64 // coldest district mean in the department
	Max         float64 // warmest district mean in the department
}

// AggregateByDepartment groups the table by department and computes group
// statistics over district means, returned in ascending department order.
// Rows without a valid mean are excluded from the statistics but reported in
// Missing, so Count+Missing over all groups always equals the table length.
func AggregateByDepartment(table DistrictTable) []DepartmentAggregate {
	groups := lo.GroupBy(table, func(r DistrictRecord) string { return r.Department })

	out := make([]DepartmentAggregate, 0, len(groups))
	for dept, rows := range groups {
		agg := DepartmentAggregate{
			Department: dept,
			Min:        math.NaN(),
			Max:        math.NaN(),
		}

		var sum float64
		for _, r := range rows {
			if !r.HasMean() {
				agg.Missing++
				continue
			}
			agg.Count++
			sum += r.Mean
			if math.IsNaN(agg.Min) || r.Mean < agg.Min {
				agg.Min = r.Mean
			}
			if math.IsNaN(agg.Max) || r.Mean > agg.Max {
				agg.Max = r.Mean
			}
		}
		if agg.Count > 0 {
			agg.MeanOfMeans = sum / float64(agg.Count)
			agg.StdOfMeans = sampleStd(rows, agg.MeanOfMeans, agg.Count)
		} else {
			agg.MeanOfMeans = math.NaN()
			agg.StdOfMeans = math.NaN()
		}
		out = append(out, agg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

// sampleStd computes the ddof=1 standard deviation of the valid means.
func sampleStd(rows []DistrictRecord, mean float64, count int) float64 {
	if count < 2 {
		return 0
	}
	var ss float64
	for _, r := range rows {
		if !r.HasMean() {
			continue
		}
		d := r.Mean - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(count-1))
}

// MostAffectedDepartment returns the department concentrating the largest
// number of high-risk districts at the given threshold, with that count.
// Ties break by ascending department name so the answer is deterministic.
// Returns ("", 0) when no district is high-risk.
func MostAffectedDepartment(table DistrictTable, threshold float64) (string, int) {
	counts := make(map[string]int)
	for _, r := range table {
		if IsHighRisk(r, threshold) {
			counts[r.Department]++
		}
	}

	var (
		best    string
		bestN   int
	)
	for _, dept := range lo.Keys(counts) {
		n := counts[dept]
		if n > bestN || (n == bestN && bestN > 0 && dept < best) {
			best, bestN = dept, n
		}
	}
	return best, bestN
}
