package recommendation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Goopi7/crop-connect/internal/crops"
)

// ExportFormat is a downloadable ranking format
type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
)

// ErrUnsupportedFormat is returned for export formats other than xlsx and csv
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseExportFormat parses a format name, defaulting to xlsx
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of the format
func (f ExportFormat) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ExportColumns are the column headers of an exported ranking
var ExportColumns = []string{
	"Rank", "Crop", "Score", "Soil", "Climate/Water", "Season", "Economics", "Accuracy", "Why",
}

// ExportOptions configures spreadsheet export
type ExportOptions struct {
	SheetName   string
	HeaderFill  string
	HeaderFont  string
	FreezeRow   bool
	MaxColWidth float64
}

// DefaultExportOptions returns default export options
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		SheetName:   "Recommendations",
		HeaderFill:  "2E7D32",
		HeaderFont:  "FFFFFF",
		FreezeRow:   true,
		MaxColWidth: 80,
	}
}

// Exporter writes ranked recommendations as spreadsheets
type Exporter struct {
	options ExportOptions
}

// NewExporter creates an exporter with default options
func NewExporter() *Exporter {
	return &Exporter{options: DefaultExportOptions()}
}

// Write renders result in the given format to w
func (e *Exporter) Write(w io.Writer, format ExportFormat, result *Result) error {
	switch format {
	case FormatCSV:
		return e.writeCSV(w, result)
	case FormatXLSX:
		return e.writeXLSX(w, result)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// exportRows flattens the ranking into one row per candidate
func exportRows(result *Result) [][]interface{} {
	rows := make([][]interface{}, 0, len(result.Recommendations))
	for i, rec := range result.Recommendations {
		rows = append(rows, []interface{}{
			i + 1,
			rec.Crop.Name,
			rec.Score,
			rec.Breakdown.Soil,
			rec.Breakdown.ClimateWater,
			rec.Breakdown.Season,
			rec.Breakdown.Economics,
			string(rec.Accuracy),
			strings.Join(rec.Why, "; "),
		})
	}
	return rows
}

func (e *Exporter) writeCSV(w io.Writer, result *Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range exportRows(result) {
		record := make([]string, len(row))
		for i, val := range row {
			switch v := val.(type) {
			case float64:
				record[i] = crops.FormatNumber(v)
			default:
				record[i] = fmt.Sprint(v)
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (e *Exporter) writeXLSX(w io.Writer, result *Result) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := e.options.SheetName
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: e.options.HeaderFont},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.options.HeaderFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	widths := make([]float64, len(ExportColumns))
	for i, col := range ExportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		widths[i] = float64(len(col)) + 2
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(ExportColumns), 1)
	if err := file.SetCellStyle(sheet, first, last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for r, row := range exportRows(result) {
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := file.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("failed to set cell value: %w", err)
			}
			if width := float64(len(fmt.Sprint(val))) * 1.2; width > widths[c] {
				widths[c] = width
			}
		}
	}

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if width > e.options.MaxColWidth {
			width = e.options.MaxColWidth
		}
		if err := file.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if e.options.FreezeRow {
		if err := file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}

	if len(result.Recommendations) > 0 {
		if err := file.AutoFilter(sheet, first+":"+last, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}

	if err := e.writeSummary(file, result); err != nil {
		return err
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeSummary adds a sheet with the request-level figures
func (e *Exporter) writeSummary(file *excelize.File, result *Result) error {
	const sheet = "Summary"
	if _, err := file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Accuracy", string(result.Accuracy)},
		{"Crops evaluated", result.TotalCropsEvaluated},
		{"Recommendations", result.RecommendationsCount},
	}
	if c := result.Climate; c != nil {
		rows = append(rows,
			[]interface{}{"Climate zone", c.ClimateZone},
			[]interface{}{"Average rainfall (mm)", c.AvgRainfall},
			[]interface{}{"Average temperature (C)", c.AvgTemp},
		)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return file.SetColWidth(sheet, "A", "A", 28)
}
