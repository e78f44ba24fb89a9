package domain

import (
	"math"
	"sort"

	"github.com/samber/lo"
)

// DefaultRiskQuantile is the national cut line for high-risk classification:
// the 10th percentile of district mean temperature.
const DefaultRiskQuantile = 0.10

// Quantile computes the q-quantile of values by linear interpolation between
// closest ranks, the same estimator the upstream zonal-statistics job uses.
// NaN entries are ignored. Returns NaN when no finite value remains. q is
// clamped to [0, 1].
func Quantile(values []float64, q float64) float64 {
	finite := lo.Filter(values, func(v float64, _ int) bool { return !math.IsNaN(v) })
	if len(finite) == 0 {
		return math.NaN()
	}
	sort.Float64s(finite)

	q = math.Max(0, math.Min(1, q))
	pos := q * float64(len(finite)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return finite[lower]
	}
	frac := pos - float64(lower)
	return finite[lower] + frac*(finite[upper]-finite[lower])
}

// RiskThreshold computes the risk cut line over the reference population the
// caller passes. The convention is the full unfiltered table; thresholds over
// filtered subsets are a deliberately separate call, never implicit.
func RiskThreshold(table DistrictTable, quantile float64) float64 {
	return Quantile(table.Means(), quantile)
}

// IsHighRisk reports whether a record falls at or below the threshold.
// Records without a valid mean are never classified high-risk.
func IsHighRisk(r DistrictRecord, threshold float64) bool {
	return r.HasMean() && r.Mean <= threshold
}

// HighRisk returns the rows of table classified high-risk at threshold,
// preserving source order. The input table is never mutated.
func HighRisk(table DistrictTable, threshold float64) DistrictTable {
	return DistrictTable(lo.Filter(table, func(r DistrictRecord, _ int) bool {
		return IsHighRisk(r, threshold)
	}))
}

// CountHighRisk counts the rows with mean ≤ threshold.
func CountHighRisk(table DistrictTable, threshold float64) int {
	return lo.CountBy(table, func(r DistrictRecord) bool {
		return IsHighRisk(r, threshold)
	})
}
