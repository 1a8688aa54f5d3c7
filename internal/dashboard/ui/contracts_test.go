package ui

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findash/findash/internal/dashboard"
)

func loadTable(t *testing.T) *dashboard.Table {
	t.Helper()
	header := []string{"Metric", "Unit"}
	for y := dashboard.FirstYear; y <= dashboard.LastYear; y++ {
		header = append(header, strconv.Itoa(y))
	}
	pad := strings.Repeat(",0", dashboard.YearCount-2)
	doc := strings.Join(header, ",") + "\n" +
		`A,US$ m,"1,234.5",-20` + pad + "\n" +
		"Dividends (OLNG),US$ m,1,2" + pad + "\n"
	table, err := dashboard.ParseCSV(strings.NewReader(doc), "ui.csv")
	require.NoError(t, err)
	return table
}

func TestToTableView(t *testing.T) {
	view := ToTableView(loadTable(t), dashboard.DefaultExcluded)

	require.Len(t, view.Years, dashboard.YearCount)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "A", view.Rows[0].Metric)
	assert.Equal(t, "1,234.50", view.Rows[0].Values[0])
	assert.Equal(t, "-20.00", view.Rows[0].Values[1])
	assert.Equal(t, "0.00", view.Rows[0].Values[dashboard.YearCount-1])
	assert.False(t, view.Rows[0].Excluded)
	assert.True(t, view.Rows[1].Excluded)

	empty := ToTableView(nil, nil)
	assert.Empty(t, empty.Rows)
}

func TestToComboData(t *testing.T) {
	table := loadTable(t)
	series, err := dashboard.BuildSeries(table, dashboard.Selection{
		Metrics: []string{"A"},
		Years:   dashboard.YearRange{From: 2023, To: 2025},
	}, dashboard.DefaultExcluded)
	require.NoError(t, err)

	data := ToComboData(series)
	assert.Equal(t, []string{"2023", "2024", "2025"}, data.Labels)
	require.Len(t, data.Stack, 1)
	assert.Equal(t, "A", data.Stack[0].Label)
	require.Len(t, data.Lines, 1)
	assert.Equal(t, "Dividends (OLNG)", data.Lines[0].Label)
	assert.Equal(t, -1500.0, data.Primary.Min)
	assert.Equal(t, 2000.0, data.Secondary.Max)
	assert.Equal(t, len(data.Primary.Ticks), len(data.Secondary.Ticks))
}

func TestToMetricOptions(t *testing.T) {
	options := ToMetricOptions([]string{"A", "B", "C"}, []string{"C", "A"})
	assert.Equal(t, []MetricOption{{Name: "A", Selected: true}, {Name: "B"}, {Name: "C", Selected: true}}, options)
}

func TestToYearOptions(t *testing.T) {
	options := ToYearOptions(2030)
	require.Len(t, options, dashboard.YearCount)
	selected := 0
	for _, opt := range options {
		if opt.Selected {
			selected++
			assert.Equal(t, 2030, opt.Year)
		}
	}
	assert.Equal(t, 1, selected)
}

func TestFiltersSelection(t *testing.T) {
	filters := DashboardFilters{Metrics: []string{"A"}, From: 2024, To: 2026}
	sel := filters.Selection()
	assert.Equal(t, []string{"A"}, sel.Metrics)
	assert.Equal(t, dashboard.YearRange{From: 2024, To: 2026}, sel.Years)
}
