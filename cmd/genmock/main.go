// Command genmock generates a synthetic district dataset for local runs and
// test fixtures. It builds the statistics table through the actual domain
// types and derives the summary document by recomputation, so the pair is
// internally consistent by construction.
//
// Usage:
//
//	go run ./cmd/genmock -out data -districts 200 -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/altiplano-labs/frost-risk-service/internal/domain"
	"github.com/altiplano-labs/frost-risk-service/internal/export"
)

// departments approximates the upstream administrative split. baseTemp is a
// department-level mean in °C that the per-district noise varies around, so
// highland departments dominate the cold tail the way the real dataset does.
var departments = []struct {
	name     string
	baseTemp float64
}{
	{"PUNO", -2.0},
	{"CUSCO", 4.0},
	{"HUANCAVELICA", 1.0},
	{"AREQUIPA", 8.0},
	{"AYACUCHO", 6.0},
	{"JUNIN", 5.0},
	{"ANCASH", 7.0},
	{"APURIMAC", 3.0},
	{"PASCO", 2.0},
	{"LIMA", 15.0},
	{"PIURA", 23.0},
	{"LORETO", 26.0},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data", "output directory for the dataset")
	districts := flag.Int("districts", 200, "number of districts to generate")
	missing := flag.Int("missing", 5, "number of districts with no raster coverage")
	seed := flag.Int64("seed", 42, "random seed")
	quantile := flag.Float64("quantile", domain.DefaultRiskQuantile, "risk classification quantile")
	flag.Parse()

	if *districts < 1 {
		return fmt.Errorf("districts must be positive, got %d", *districts)
	}
	if *missing < 0 || *missing > *districts {
		return fmt.Errorf("missing must be in [0, %d], got %d", *districts, *missing)
	}

	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // reproducibility matters here, not unpredictability

	table := generateTable(rng, *districts, *missing)
	summary := domain.RecomputeSummary(table, *quantile)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	statsPath := filepath.Join(*outDir, "estadisticas_temperatura_distritos.csv")
	if err := writeFile(statsPath, func(f *os.File) error {
		return export.WriteTableCSV(f, table)
	}); err != nil {
		return fmt.Errorf("writing statistics table: %w", err)
	}
	log.Printf("wrote %d districts: %s", len(table), statsPath)

	summaryPath := filepath.Join(*outDir, "metricas_resumen.json")
	if err := writeFile(summaryPath, func(f *os.File) error {
		return export.WriteSummaryJSON(f, summary)
	}); err != nil {
		return fmt.Errorf("writing summary document: %w", err)
	}
	log.Printf("wrote summary document: %s", summaryPath)

	printStats(table, summary)
	return nil
}

// generateTable produces sorted, duplicate-free districts with min ≤ mean ≤ max,
// std ≥ 0, and range = max − min. The last missing districts get NaN numerics.
func generateTable(rng *rand.Rand, districts, missing int) domain.DistrictTable {
	table := make(domain.DistrictTable, 0, districts)
	for i := 0; i < districts; i++ {
		dep := departments[i%len(departments)]
		rec := domain.DistrictRecord{
			Department: dep.name,
			Province:   fmt.Sprintf("PROVINCIA %02d", i/len(departments)%8),
			District:   fmt.Sprintf("DISTRITO %04d", i),
		}

		if i >= districts-missing {
			rec.Mean = math.NaN()
			rec.Min = math.NaN()
			rec.Max = math.NaN()
			rec.Std = math.NaN()
			rec.Percentile10 = math.NaN()
			rec.Percentile90 = math.NaN()
			rec.Range = math.NaN()
			table = append(table, rec)
			continue
		}

		mean := dep.baseTemp + rng.NormFloat64()*3.0
		spread := 2.0 + rng.Float64()*6.0
		rec.PixelCount = 20 + rng.Intn(400)
		rec.Mean = round2(mean)
		rec.Min = round2(mean - spread)
		rec.Max = round2(mean + spread)
		rec.Std = round2(spread / 3.0)
		rec.Percentile10 = round2(mean - spread*0.8)
		rec.Percentile90 = round2(mean + spread*0.8)
		rec.Range = round2(rec.Max - rec.Min)
		table = append(table, rec)
	}

	sort.Slice(table, func(i, j int) bool { return table[i].Key() < table[j].Key() })
	return table
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(table domain.DistrictTable, summary domain.SummaryMetrics) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total districts: %d\n", summary.TotalDistricts)
	fmt.Printf("High-risk districts: %d\n", summary.HighRiskDistricts)
	fmt.Printf("Risk threshold: %.2f °C\n", summary.RiskThreshold)
	fmt.Printf("National mean: %.2f °C\n", summary.NationalMeanTemp)
	fmt.Printf("Extremes: %.2f °C (%s) .. %.2f °C (%s)\n",
		summary.ExtremeMinTemp, summary.ColdestDistrict,
		summary.ExtremeMaxTemp, summary.WarmestDistrict)

	fmt.Println("\nDistricts by department:")
	for _, agg := range domain.AggregateByDepartment(table) {
		fmt.Printf("  %s: count=%d missing=%d mean=%.2f\n",
			agg.Department, agg.Count, agg.Missing, agg.MeanOfMeans)
	}
}
