package dashboard

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func csvHeader() string {
	cols := []string{"Metric", "Unit"}
	for y := FirstYear; y <= LastYear; y++ {
		cols = append(cols, strconv.Itoa(y))
	}
	return strings.Join(cols, ",")
}

// csvRow pads values with zeros up to LastYear.
func csvRow(metric, unit string, values ...string) string {
	cols := []string{metric, unit}
	for i := 0; i < YearCount; i++ {
		if i < len(values) {
			cols = append(cols, values[i])
			continue
		}
		cols = append(cols, "0")
	}
	return strings.Join(cols, ",")
}

func csvDoc(rows ...string) string {
	return strings.Join(append([]string{csvHeader()}, rows...), "\n") + "\n"
}

func mustParse(t *testing.T, rows ...string) *Table {
	t.Helper()
	table, err := ParseCSV(strings.NewReader(csvDoc(rows...)), "test.csv")
	require.NoError(t, err)
	return table
}

// scenarioTable is the A/B/dividend table used across tests.
func scenarioTable(t *testing.T) *Table {
	return mustParse(t,
		csvRow("A", "US$ m", "10", "20"),
		csvRow("B", "US$ m", "5", "5"),
		csvRow("Dividends (OLNG)", "US$ m", "1", "2"),
	)
}
