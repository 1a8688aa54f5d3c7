package dashboard

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// LoadTable reads the metric table from path. Files ending in .xlsx are read
// from their first sheet, everything else is parsed as CSV.
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	var records [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(raw, path)
	default:
		records, err = readCSV(raw, path)
	}
	if err != nil {
		return nil, err
	}
	return buildTable(records, raw, path)
}

// ParseCSV parses a metric table from r. source only labels errors.
func ParseCSV(r io.Reader, source string) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: err}
	}
	records, err := readCSV(raw, source)
	if err != nil {
		return nil, err
	}
	return buildTable(records, raw, source)
}

func readCSV(raw []byte, source string) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &DataLoadError{Source: source, Line: parseErr.Line, Err: parseErr.Err}
		}
		return nil, &DataLoadError{Source: source, Err: err}
	}
	return records, nil
}

func buildTable(records [][]string, raw []byte, source string) (*Table, error) {
	rows, err := parseRecords(records, source)
	if err != nil {
		return nil, err
	}
	return &Table{
		ID:       uuid.NewSHA1(uuid.Nil, raw),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Rows:     rows,
	}, nil
}

func parseRecords(records [][]string, source string) ([]Row, error) {
	if len(records) == 0 {
		return nil, loadError(source, 0, "file is empty")
	}
	header := records[0]
	want := leadingColumns + YearCount
	if len(header) != want {
		return nil, loadError(source, 1, "expected %d columns (Metric, Unit, %d..%d), got %d", want, FirstYear, LastYear, len(header))
	}
	for i, year := range YearsBetween(FirstYear, LastYear) {
		label := strings.TrimSpace(header[leadingColumns+i])
		if !headerNamesYear(label, year) {
			return nil, loadError(source, 1, "column %d header %q, expected %d", leadingColumns+i+1, label, year)
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for idx, record := range records[1:] {
		line := idx + 2
		if blankRecord(record) {
			continue
		}
		if len(record) != want {
			return nil, loadError(source, line, "expected %d fields, got %d", want, len(record))
		}
		metric := strings.TrimSpace(record[0])
		if metric == "" {
			return nil, loadError(source, line, "metric name is empty")
		}
		row := Row{
			Metric: metric,
			Unit:   strings.TrimSpace(record[1]),
			Values: make([]decimal.Decimal, YearCount),
		}
		for i := 0; i < YearCount; i++ {
			value, err := parseValue(record[leadingColumns+i])
			if err != nil {
				return nil, loadError(source, line, "%s %d: %v", metric, FirstYear+i, err)
			}
			row.Values[i] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func headerNamesYear(label string, year int) bool {
	value, err := decimal.NewFromString(label)
	if err != nil {
		return false
	}
	return value.Equal(decimal.NewFromInt(int64(year)))
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// parseValue accepts plain numbers, thousands separators and blanks (zero).
func parseValue(field string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(field), ",", "")
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(cleaned)
}
