package export

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/altiplano-labs/frost-risk-service/internal/domain"
)

func exportTable() domain.DistrictTable {
	return domain.DistrictTable{
		{
			Department: "PUNO", Province: "PUNO", District: "ACORA",
			PixelCount: 1200, Mean: -4.25, Min: -9.1, Max: 1.3, Std: 2.05,
			Percentile10: -7.8, Percentile90: -1.2, Range: 10.4,
		},
		{
			Department: "LORETO", Province: "MAYNAS", District: "IQUITOS",
			PixelCount: 3400, Mean: math.NaN(), Min: 18.2, Max: 24.9, Std: 1.1,
			Percentile10: math.NaN(), Percentile90: math.NaN(), Range: 6.7,
		},
	}
}

func TestWriteTableCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, exportTable()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "DEPARTAMEN,PROVINCIA,DISTRITO,count,mean,min,max,std,percentile_10,percentile_90,range", lines[0])
	assert.Equal(t, "PUNO,PUNO,ACORA,1200,-4.25,-9.1,1.3,2.05,-7.8,-1.2,10.4", lines[1])

	// Missing values render as empty cells, never "NaN".
	assert.Equal(t, "LORETO,MAYNAS,IQUITOS,3400,,18.2,24.9,1.1,,,6.7", lines[2])
}

func TestWriteTableCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestWriteAggregatesCSV(t *testing.T) {
	aggs := []domain.DepartmentAggregate{
		{Department: "PUNO", Count: 2, Missing: 1, MeanOfMeans: -3.5, StdOfMeans: 1.25, Min: -4.75, Max: -2.25},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAggregatesCSV(&buf, aggs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "DEPARTAMEN,count,missing,mean_of_means,std_of_means,min,max", lines[0])
	assert.Equal(t, "PUNO,2,1,-3.5,1.25,-4.75,-2.25", lines[1])
}

func TestWriteSummaryJSON(t *testing.T) {
	summary := domain.SummaryMetrics{
		TotalDistricts:    1873,
		HighRiskDistricts: 188,
		NationalMeanTemp:  11.43,
		ExtremeMinTemp:    -9.87,
		ExtremeMaxTemp:    25.61,
		ColdestDistrict:   "SANTA ROSA",
		WarmestDistrict:   "YAQUERANA",
		RiskThreshold:     1.52,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryJSON(&buf, summary))

	// The export must round-trip through the input key schema.
	var keys map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &keys))
	for _, key := range []string{
		"total_distritos", "distritos_alto_riesgo", "temp_media_nacional",
		"temp_minima_extrema", "temp_maxima_extrema", "distrito_mas_frio",
		"distrito_mas_calido", "umbral_alto_riesgo",
	} {
		assert.Contains(t, keys, key)
	}

	parsed, err := domain.ParseSummaryJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, summary, parsed)
}

func TestWriteTableXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTableXLSX(&buf, exportTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "DEPARTAMEN", rows[0][0])
	assert.Equal(t, "ACORA", rows[1][2])
	assert.Equal(t, "-4.25", rows[1][4])
}
