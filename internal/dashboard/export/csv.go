package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/findash/findash/internal/dashboard"
)

// WriteSeriesCSV emits one row per year: the cumulative value of every
// stacked metric followed by the raw value of every overlay line.
func WriteSeriesCSV(w io.Writer, series dashboard.Series) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, 0, 1+len(series.Stack)+len(series.Lines))
	header = append(header, "Year")
	for _, s := range series.Stack {
		header = append(header, s.Metric+" (cumulative)")
	}
	for _, l := range series.Lines {
		header = append(header, l.Metric)
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for i, year := range series.Years {
		record := make([]string, 0, len(header))
		record = append(record, strconv.Itoa(year))
		for _, s := range series.Stack {
			record = append(record, formatFloat(s.Cumulative[i]))
		}
		for _, l := range series.Lines {
			record = append(record, formatFloat(l.Values[i]))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
