package domain

import (
	"fmt"
	"math"
	"strings"
)

// DefaultMetricsTolerance is how far a stated temperature may drift from its
// recomputed value before reconciliation flags it. Summary documents ship
// rounded to two decimals, so exact float equality would be noise.
const DefaultMetricsTolerance = 0.05

// InconsistentMetricsError reports every field of a stated summary document
// that disagrees with recomputation from the table beyond tolerance.
type InconsistentMetricsError struct {
	Findings []string
}

func (e *InconsistentMetricsError) Error() string {
	return fmt.Sprintf("summary metrics disagree with table: %s", strings.Join(e.Findings, "; "))
}

// RecomputeSummary derives the national summary metrics from the table alone.
// The threshold is the quantile of mean temperature over the full table; the
// extreme temperatures are the coldest and warmest district means, with ties
// on the extremes broken by ascending district name.
func RecomputeSummary(table DistrictTable, quantile float64) SummaryMetrics {
	threshold := RiskThreshold(table, quantile)

	s := SummaryMetrics{
		TotalDistricts:    len(table),
		HighRiskDistricts: CountHighRisk(table, threshold),
		RiskThreshold:     threshold,
		ExtremeMinTemp:    math.NaN(),
		ExtremeMaxTemp:    math.NaN(),
	}

	var sum float64
	var n int
	for _, r := range table {
		if !r.HasMean() {
			continue
		}
		sum += r.Mean
		n++
		if math.IsNaN(s.ExtremeMinTemp) || r.Mean < s.ExtremeMinTemp ||
			(r.Mean == s.ExtremeMinTemp && r.District < s.ColdestDistrict) {
			s.ExtremeMinTemp = r.Mean
			s.ColdestDistrict = r.District
		}
		if math.IsNaN(s.ExtremeMaxTemp) || r.Mean > s.ExtremeMaxTemp ||
			(r.Mean == s.ExtremeMaxTemp && r.District < s.WarmestDistrict) {
			s.ExtremeMaxTemp = r.Mean
			s.WarmestDistrict = r.District
		}
	}
	if n > 0 {
		s.NationalMeanTemp = sum / float64(n)
	} else {
		s.NationalMeanTemp = math.NaN()
	}
	return s
}

// Reconcile cross-references a stated summary document against recomputation
// from the table. Counts must match exactly; temperatures and the threshold
// must agree within tolerance (°C). District names are compared verbatim.
// Returns nil when consistent, otherwise an *InconsistentMetricsError listing
// every disagreement.
func Reconcile(stated SummaryMetrics, table DistrictTable, quantile, tolerance float64) error {
	if tolerance <= 0 {
		tolerance = DefaultMetricsTolerance
	}
	computed := RecomputeSummary(table, quantile)

	var findings []string
	checkInt := func(field string, stated, computed int) {
		if stated != computed {
			findings = append(findings, fmt.Sprintf("%s: stated %d, computed %d", field, stated, computed))
		}
	}
	checkTemp := func(field string, stated, computed float64) {
		if math.Abs(stated-computed) > tolerance || math.IsNaN(stated) != math.IsNaN(computed) {
			findings = append(findings, fmt.Sprintf("%s: stated %.2f, computed %.2f", field, stated, computed))
		}
	}
	checkName := func(field string, stated, computed string) {
		if stated != computed {
			findings = append(findings, fmt.Sprintf("%s: stated %q, computed %q", field, stated, computed))
		}
	}

	checkInt("total_distritos", stated.TotalDistricts, computed.TotalDistricts)
	checkInt("distritos_alto_riesgo", stated.HighRiskDistricts, computed.HighRiskDistricts)
	checkTemp("temp_media_nacional", stated.NationalMeanTemp, computed.NationalMeanTemp)
	checkTemp("temp_minima_extrema", stated.ExtremeMinTemp, computed.ExtremeMinTemp)
	checkTemp("temp_maxima_extrema", stated.ExtremeMaxTemp, computed.ExtremeMaxTemp)
	checkTemp("umbral_alto_riesgo", stated.RiskThreshold, computed.RiskThreshold)
	checkName("distrito_mas_frio", stated.ColdestDistrict, computed.ColdestDistrict)
	checkName("distrito_mas_calido", stated.WarmestDistrict, computed.WarmestDistrict)

	if len(findings) > 0 {
		return &InconsistentMetricsError{Findings: findings}
	}
	return nil
}
