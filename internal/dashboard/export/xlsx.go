package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/findash/findash/internal/dashboard"
)

// Sheet names of the exported workbook.
const (
	DataSheet   = "Data"
	SeriesSheet = "Chart Data"
)

// WriteWorkbook writes the full table and the derived series as an XLSX
// workbook.
func WriteWorkbook(w io.Writer, table *dashboard.Table, series dashboard.Series) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), DataSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(SeriesSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := []any{"Metric", "Unit"}
	for _, year := range table.Years() {
		header = append(header, year)
	}
	if err := writeRow(f, DataSheet, 1, header); err != nil {
		return err
	}
	for i, row := range table.Rows {
		record := []any{row.Metric, row.Unit}
		for _, value := range row.Values {
			record = append(record, value.InexactFloat64())
		}
		if err := writeRow(f, DataSheet, i+2, record); err != nil {
			return err
		}
	}

	seriesHeader := []any{"Year"}
	for _, s := range series.Stack {
		seriesHeader = append(seriesHeader, s.Metric+" (cumulative)")
	}
	for _, l := range series.Lines {
		seriesHeader = append(seriesHeader, l.Metric)
	}
	if err := writeRow(f, SeriesSheet, 1, seriesHeader); err != nil {
		return err
	}
	for i, year := range series.Years {
		record := []any{year}
		for _, s := range series.Stack {
			record = append(record, s.Cumulative[i])
		}
		for _, l := range series.Lines {
			record = append(record, l.Values[i])
		}
		if err := writeRow(f, SeriesSheet, i+2, record); err != nil {
			return err
		}
	}

	for _, sheet := range []string{DataSheet, SeriesSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
