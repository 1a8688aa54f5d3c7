package dashboard

import (
	"bytes"
	"errors"

	"github.com/xuri/excelize/v2"
)

// readXLSX returns the rows of the first sheet as stored, ignoring number
// formats. Trailing empty cells are padded back so rows line up with the
// header.
func readXLSX(raw []byte, source string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DataLoadError{Source: source, Err: errors.New("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: err}
	}
	if len(rows) == 0 {
		return rows, nil
	}
	width := len(rows[0])
	for i := 1; i < len(rows); i++ {
		for len(rows[i]) < width && !blankRecord(rows[i]) {
			rows[i] = append(rows[i], "")
		}
	}
	return rows, nil
}
