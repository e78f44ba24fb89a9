// Command validate performs offline integrity checks on a dataset directory:
// schema and row validation of the statistics CSV, per-record invariants,
// classification and aggregation cross-checks, and reconciliation of the
// national summary document against recomputation from the table.
//
// Usage:
//
//	go run ./cmd/validate -data-dir ./data
//
// Exits non-zero when any phase fails, so it can gate dataset publication.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/altiplano-labs/frost-risk-service/internal/domain"
)

// rangeTolerance bounds the reconstruction error of the derived range column.
const rangeTolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "", "directory containing the dataset")
	statsFile := flag.String("stats", "estadisticas_temperatura_distritos.csv", "statistics CSV filename")
	summaryFile := flag.String("summary", "metricas_resumen.json", "summary JSON filename")
	quantile := flag.Float64("quantile", domain.DefaultRiskQuantile, "risk classification quantile")
	tolerance := flag.Float64("tolerance", domain.DefaultMetricsTolerance, "summary reconciliation tolerance, °C")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataDir, *statsFile, *summaryFile, *quantile, *tolerance); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir, statsName, summaryName string, quantile, tolerance float64) int {
	fmt.Println("=== District Dataset Integrity Validation ===")
	fmt.Println()

	table, report, err := loadTable(filepath.Join(dataDir, statsName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	fmt.Printf("loaded %d districts (skipped %d, duplicates %d, missing means %d)\n\n",
		report.Rows, report.Skipped, report.Duplicates, report.MissingMeans)

	phases := []*phase{
		checkRecordInvariants(table),
		checkClassification(table, quantile),
		checkAggregation(table),
		checkSummary(table, filepath.Join(dataDir, summaryName), quantile, tolerance),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      - %s\n", e)
		}
	}

	fmt.Println()
	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Println("all phases passed")
	return 0
}

func loadTable(path string) (domain.DistrictTable, domain.LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.LoadReport{}, fmt.Errorf("open stats file: %w", err)
	}
	defer f.Close()

	table, report, err := domain.ParseStatsCSV(f)
	if err != nil {
		return nil, report, fmt.Errorf("load stats table: %w", err)
	}
	return table, report, nil
}

// checkRecordInvariants verifies min ≤ mean ≤ max, std ≥ 0, and that the
// derived range column reconstructs from its extremes.
func checkRecordInvariants(table domain.DistrictTable) *phase {
	p := &phase{name: "record invariants"}
	for _, r := range table {
		if !r.HasMean() || math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			continue
		}
		if r.Min > r.Mean || r.Mean > r.Max {
			p.errorf("%s/%s: mean %.2f outside [%.2f, %.2f]", r.Department, r.District, r.Mean, r.Min, r.Max)
		}
		if !math.IsNaN(r.Std) && r.Std < 0 {
			p.errorf("%s/%s: negative std %.2f", r.Department, r.District, r.Std)
		}
		if !math.IsNaN(r.Range) && math.Abs(r.Range-(r.Max-r.Min)) > rangeTolerance {
			p.errorf("%s/%s: range %.4f != max-min %.4f", r.Department, r.District, r.Range, r.Max-r.Min)
		}
	}
	return p
}

// checkClassification verifies the threshold is finite and that membership
// counts match the rule exactly.
func checkClassification(table domain.DistrictTable, quantile float64) *phase {
	p := &phase{name: "risk classification"}

	threshold := domain.RiskThreshold(table, quantile)
	if math.IsNaN(threshold) {
		p.errorf("risk threshold is undefined: no valid mean temperatures")
		return p
	}

	want := 0
	for _, r := range table {
		if r.HasMean() && r.Mean <= threshold {
			want++
		}
	}
	if got := domain.CountHighRisk(table, threshold); got != want {
		p.errorf("high-risk count %d does not match rule count %d", got, want)
	}
	if len(domain.HighRisk(table, threshold)) != want {
		p.errorf("high-risk subset size does not match count")
	}
	return p
}

// checkAggregation verifies per-department counts partition the table.
func checkAggregation(table domain.DistrictTable) *phase {
	p := &phase{name: "department aggregation"}

	total := 0
	for _, agg := range domain.AggregateByDepartment(table) {
		total += agg.Count + agg.Missing
		if agg.Count > 0 && !math.IsNaN(agg.Min) && !math.IsNaN(agg.Max) {
			if agg.Min > agg.MeanOfMeans || agg.MeanOfMeans > agg.Max {
				p.errorf("%s: mean of means %.2f outside [%.2f, %.2f]", agg.Department, agg.MeanOfMeans, agg.Min, agg.Max)
			}
		}
	}
	if total != len(table) {
		p.errorf("aggregate counts sum to %d, table has %d rows", total, len(table))
	}
	return p
}

// checkSummary reconciles the stated national summary against recomputation.
func checkSummary(table domain.DistrictTable, path string, quantile, tolerance float64) *phase {
	p := &phase{name: "summary reconciliation"}

	f, err := os.Open(path)
	if err != nil {
		p.errorf("open summary document: %v", err)
		return p
	}
	defer f.Close()

	summary, err := domain.ParseSummaryJSON(f)
	if err != nil {
		p.errorf("parse summary document: %v", err)
		return p
	}

	if err := domain.Reconcile(summary, table, quantile, tolerance); err != nil {
		p.errorf("%v", err)
	}
	return p
}
