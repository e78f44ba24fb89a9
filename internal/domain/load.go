package domain

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrEmptyDataset is returned when a source validates structurally but
// contains zero usable rows. The analytics layer never operates on an empty
// table.
var ErrEmptyDataset = errors.New("dataset contains no rows")

// requiredColumns must all be present in the stats CSV header before any
// numeric parsing happens.
var requiredColumns = []string{"DEPARTAMEN", "PROVINCIA", "DISTRITO", "mean", "min", "max", "std"}

// requiredSummaryKeys must all be present in the national summary JSON.
var requiredSummaryKeys = []string{
	"total_distritos",
	"distritos_alto_riesgo",
	"temp_media_nacional",
	"temp_minima_extrema",
	"temp_maxima_extrema",
	"distrito_mas_frio",
	"distrito_mas_calido",
	"umbral_alto_riesgo",
}

// LoadReport summarizes what the loader accepted and what it had to set
// aside, so excluded rows are never silently miscounted downstream.
type LoadReport struct {
	Rows         int // rows accepted into the table
	Skipped      int // rows dropped: blank identity columns or ragged lines
	Duplicates   int // rows dropped: repeated (department, province, district)
	MissingMeans int // accepted rows whose mean cell was malformed (NaN)
}

// ParseStatsCSV reads the zonal statistics table from r and validates it.
//
// It fails with *SchemaError when any required column is missing and with
// ErrEmptyDataset when no valid row survives. Malformed numeric cells become
// NaN and the row is kept; rows without a complete (department, province,
// district) identity are skipped and counted. The transform is pure: no
// caching, no globals.
func ParseStatsCSV(r io.Reader) (DistrictTable, LoadReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, LoadReport{}, ErrEmptyDataset
		}
		return nil, LoadReport{}, fmt.Errorf("read stats header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, LoadReport{}, &SchemaError{Missing: missing}
	}

	var (
		table  DistrictTable
		report LoadReport
		seen   = make(map[string]struct{})
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, LoadReport{}, fmt.Errorf("read stats row: %w", err)
		}

		rec, ok := parseRow(row, col)
		if !ok {
			report.Skipped++
			continue
		}
		if _, dup := seen[rec.Key()]; dup {
			report.Duplicates++
			continue
		}
		seen[rec.Key()] = struct{}{}

		if !rec.HasMean() {
			report.MissingMeans++
		}
		table = append(table, rec)
	}

	if len(table) == 0 {
		return nil, report, ErrEmptyDataset
	}
	report.Rows = len(table)
	return table, report, nil
}

// parseRow builds a DistrictRecord from one CSV line. Returns ok=false when
// the line is too short for the required columns or any identity column is
// blank.
func parseRow(row []string, col map[string]int) (DistrictRecord, bool) {
	rec := DistrictRecord{
		Department: cell(row, col, "DEPARTAMEN"),
		Province:   cell(row, col, "PROVINCIA"),
		District:   cell(row, col, "DISTRITO"),
	}
	if rec.Department == "" || rec.Province == "" || rec.District == "" {
		return DistrictRecord{}, false
	}

	rec.Mean = parseTemp(cell(row, col, "mean"))
	rec.Min = parseTemp(cell(row, col, "min"))
	rec.Max = parseTemp(cell(row, col, "max"))
	rec.Std = parseTemp(cell(row, col, "std"))
	rec.Percentile10 = parseTemp(cell(row, col, "percentile_10"))
	rec.Percentile90 = parseTemp(cell(row, col, "percentile_90"))
	rec.Range = parseTemp(cell(row, col, "range"))

	if n, err := strconv.Atoi(cell(row, col, "count")); err == nil && n >= 0 {
		rec.PixelCount = n
	}

	// The range column is derived; recompute it when absent but derivable.
	if math.IsNaN(rec.Range) && !math.IsNaN(rec.Min) && !math.IsNaN(rec.Max) {
		rec.Range = rec.Max - rec.Min
	}
	return rec, true
}

// cell returns the trimmed value of a named column, or "" when the column is
// absent or the row is too short.
func cell(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseTemp parses a temperature cell, mapping anything unparseable to NaN.
func parseTemp(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseSummaryJSON reads the national summary-metrics document from r.
// Key presence is checked before decoding so a truncated document surfaces as
// a *SchemaError naming the absent keys, not as zero values.
func ParseSummaryJSON(r io.Reader) (SummaryMetrics, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return SummaryMetrics{}, fmt.Errorf("read summary document: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return SummaryMetrics{}, fmt.Errorf("parse summary document: %w", err)
	}

	var missing []string
	for _, key := range requiredSummaryKeys {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return SummaryMetrics{}, &SchemaError{Missing: missing}
	}

	var summary SummaryMetrics
	if err := json.Unmarshal(data, &summary); err != nil {
		return SummaryMetrics{}, fmt.Errorf("parse summary document: %w", err)
	}
	return summary, nil
}
