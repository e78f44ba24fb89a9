package domain

import (
	"fmt"
	"math"
	"strings"
)

// DistrictRecord is one row of the zonal statistics table: a single
// administrative district and its temperature summary. Temperatures are in
// °C; a NaN value means the source cell was absent or malformed.
type DistrictRecord struct {
	Department string
	Province   string
	District   string

	// PixelCount is the number of valid raster pixels inside the district
	// boundary. Zero when the column is absent or unparseable.
	PixelCount int

	Mean float64
	Min  float64
	Max  float64
	Std  float64

	Percentile10 float64
	Percentile90 float64
	Range        float64
}

// HasMean reports whether the record carries a usable mean temperature.
func (r DistrictRecord) HasMean() bool { return !math.IsNaN(r.Mean) }

// Key returns the (department, province, district) identity of the row.
func (r DistrictRecord) Key() string {
	return r.Department + "|" + r.Province + "|" + r.District
}

// DistrictTable is an ordered sequence of district records, unique by
// (department, province, district). Row order is the source order; it matters
// for stable display, never for aggregation.
type DistrictTable []DistrictRecord

// Means returns the mean-temperature column, NaN entries included.
func (t DistrictTable) Means() []float64 {
	out := make([]float64, len(t))
	for i, r := range t {
		out[i] = r.Mean
	}
	return out
}

// SummaryMetrics is the immutable national summary document. JSON tags match
// the upstream Spanish key schema exactly (spec'd external interface).
type SummaryMetrics struct {
	TotalDistricts    int     `json:"total_distritos"`
	HighRiskDistricts int     `json:"distritos_alto_riesgo"`
	NationalMeanTemp  float64 `json:"temp_media_nacional"`
	ExtremeMinTemp    float64 `json:"temp_minima_extrema"`
	ExtremeMaxTemp    float64 `json:"temp_maxima_extrema"`
	ColdestDistrict   string  `json:"distrito_mas_frio"`
	WarmestDistrict   string  `json:"distrito_mas_calido"`
	RiskThreshold     float64 `json:"umbral_alto_riesgo"`
}

// SchemaError reports required columns or keys missing from an input source.
// The loader checks presence before any numeric use, so a SchemaError always
// means nothing was parsed.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}
