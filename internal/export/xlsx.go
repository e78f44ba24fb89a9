package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/altiplano-labs/frost-risk-service/internal/domain"
)

// xlsxSheet is the worksheet name of the table export.
const xlsxSheet = "Distritos"

// WriteTableXLSX writes the district table as a single-sheet spreadsheet.
// Missing values become empty cells, as in the CSV export.
func WriteTableXLSX(w io.Writer, table domain.DistrictTable) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]any, len(tableHeader))
	for i, name := range tableHeader {
		header[i] = name
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, r := range table {
		row := []any{
			r.Department, r.Province, r.District,
			r.PixelCount,
			xlsxTemp(r.Mean), xlsxTemp(r.Min), xlsxTemp(r.Max), xlsxTemp(r.Std),
			xlsxTemp(r.Percentile10), xlsxTemp(r.Percentile90), xlsxTemp(r.Range),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// xlsxTemp maps NaN to nil so excelize leaves the cell blank.
func xlsxTemp(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
