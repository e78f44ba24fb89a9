// Package export renders validated analytics views into the delimited-text,
// spreadsheet, and structured-document formats the presentation layer
// downloads. Writers are pure: they read a view and stream it, nothing more.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/altiplano-labs/frost-risk-service/internal/domain"
)

// tableHeader is the full column set of the district table export, matching
// the upstream CSV naming so round-trips are lossless.
var tableHeader = []string{
	"DEPARTAMEN", "PROVINCIA", "DISTRITO",
	"count", "mean", "min", "max", "std",
	"percentile_10", "percentile_90", "range",
}

// WriteTableCSV streams the table as delimited text with all columns.
// Missing values render as empty cells.
func WriteTableCSV(w io.Writer, table domain.DistrictTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	for _, r := range table {
		row := []string{
			r.Department, r.Province, r.District,
			strconv.Itoa(r.PixelCount),
			formatTemp(r.Mean), formatTemp(r.Min), formatTemp(r.Max), formatTemp(r.Std),
			formatTemp(r.Percentile10), formatTemp(r.Percentile90), formatTemp(r.Range),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write table row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAggregatesCSV streams department aggregates as delimited text.
func WriteAggregatesCSV(w io.Writer, aggs []domain.DepartmentAggregate) error {
	cw := csv.NewWriter(w)
	header := []string{"DEPARTAMEN", "count", "missing", "mean_of_means", "std_of_means", "min", "max"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write aggregate header: %w", err)
	}
	for _, a := range aggs {
		row := []string{
			a.Department,
			strconv.Itoa(a.Count),
			strconv.Itoa(a.Missing),
			formatTemp(a.MeanOfMeans),
			formatTemp(a.StdOfMeans),
			formatTemp(a.Min),
			formatTemp(a.Max),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write aggregate row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryJSON re-exports the summary metrics in the same structured
// document format they arrive in (Spanish keys, spec'd external interface).
func WriteSummaryJSON(w io.Writer, summary domain.SummaryMetrics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary document: %w", err)
	}
	return nil
}

// formatTemp renders a temperature cell; NaN becomes an empty cell rather
// than the literal "NaN" so spreadsheet tools treat it as missing.
func formatTemp(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
