package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterAndTransformScenario(t *testing.T) {
	table := scenarioTable(t)

	stack, lines, err := FilterAndTransform(table, []string{"A", "B"}, YearRange{From: 2023, To: 2024}, DefaultExcluded)
	require.NoError(t, err)

	assert.Equal(t, []int{2023, 2024}, stack.Years)
	require.Len(t, stack.Series, 2)
	assert.Equal(t, "A", stack.Series[0].Metric)
	assert.Equal(t, []float64{10, 20}, stack.Series[0].Cumulative)
	assert.Equal(t, "B", stack.Series[1].Metric)
	assert.Equal(t, []float64{5, 5}, stack.Series[1].Raw)
	assert.Equal(t, []float64{15, 25}, stack.Series[1].Cumulative)

	require.Len(t, lines.Series, 1)
	assert.Equal(t, "Dividends (OLNG)", lines.Series[0].Metric)
	assert.Equal(t, []float64{1, 2}, lines.Series[0].Values)
}

func TestFilterAndTransformKeepsTableOrder(t *testing.T) {
	table := scenarioTable(t)

	stack, _, err := FilterAndTransform(table, []string{"B", "A"}, FullRange(), DefaultExcluded)
	require.NoError(t, err)
	require.Len(t, stack.Series, 2)
	assert.Equal(t, "A", stack.Series[0].Metric)
	assert.Equal(t, "B", stack.Series[1].Metric)
	assert.Len(t, stack.Series[0].Raw, YearCount)
}

func TestFilterAndTransformLastCumulativeIsSum(t *testing.T) {
	table := mustParse(t,
		csvRow("A", "", "0.1", "3"),
		csvRow("B", "", "0.2", "0"),
		csvRow("C", "", "0.3", "7.5"),
		csvRow("Dividends (KOLNG) - RHS", "", "9"),
	)

	stack, _, err := FilterAndTransform(table, []string{"A", "B", "C"}, YearRange{From: 2023, To: 2024}, DefaultExcluded)
	require.NoError(t, err)
	require.Len(t, stack.Series, 3)

	for i := range stack.Years {
		prev := 0.0
		sum := 0.0
		for _, series := range stack.Series {
			assert.GreaterOrEqual(t, series.Cumulative[i], prev)
			prev = series.Cumulative[i]
			sum += series.Raw[i]
		}
		assert.InDelta(t, sum, prev, 1e-9)
	}
	// Decimal running sums keep 0.1+0.2+0.3 exact.
	assert.Equal(t, 0.6, stack.Series[2].Cumulative[0])
}

func TestFilterAndTransformStacksDuplicateMetrics(t *testing.T) {
	table := mustParse(t,
		csvRow("A", "", "1"),
		csvRow("A", "", "2"),
		csvRow("Dividends (OLNG)", "", "4"),
		csvRow("Dividends (OLNG)", "", "8"),
	)

	stack, lines, err := FilterAndTransform(table, []string{"A"}, YearRange{From: 2023, To: 2023}, DefaultExcluded)
	require.NoError(t, err)
	require.Len(t, stack.Series, 2)
	assert.Equal(t, []float64{3}, stack.Series[1].Cumulative)
	require.Len(t, lines.Series, 1)
	assert.Equal(t, []float64{4}, lines.Series[0].Values)
}

func TestFilterAndTransformNeverStacksExcluded(t *testing.T) {
	table := scenarioTable(t)

	_, _, err := FilterAndTransform(table, []string{"A", "Dividends (OLNG)"}, FullRange(), DefaultExcluded)
	assert.ErrorIs(t, err, ErrUnknownMetric)

	stack, _, err := FilterAndTransform(table, []string{"A"}, FullRange(), DefaultExcluded)
	require.NoError(t, err)
	for _, series := range stack.Series {
		assert.NotContains(t, DefaultExcluded, series.Metric)
	}
}

func TestFilterAndTransformErrors(t *testing.T) {
	table := scenarioTable(t)

	_, _, err := FilterAndTransform(table, nil, FullRange(), DefaultExcluded)
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, _, err = FilterAndTransform(table, []string{"A"}, YearRange{From: 2030, To: 2025}, DefaultExcluded)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, _, err = FilterAndTransform(table, []string{"Z"}, FullRange(), DefaultExcluded)
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestFilterAndTransformSkipsMissingExcluded(t *testing.T) {
	table := scenarioTable(t)

	_, lines, err := FilterAndTransform(table, []string{"A"}, FullRange(), DefaultExcluded)
	require.NoError(t, err)
	require.Len(t, lines.Series, 1)
	assert.Equal(t, []string{"Dividends (KOLNG) - RHS"}, MissingExcluded(table, DefaultExcluded))
}

func TestListSelectableMetrics(t *testing.T) {
	table := mustParse(t,
		csvRow("Revenue", ""),
		csvRow("Dividends (OLNG)", ""),
		csvRow("Opex", ""),
		csvRow("Revenue", ""),
		csvRow("Dividends (KOLNG) - RHS", ""),
		csvRow("Capex", ""),
	)

	assert.Equal(t, []string{"Revenue", "Opex", "Capex"}, ListSelectableMetrics(table, DefaultExcluded))
	assert.Equal(t, []string{"Revenue", "Dividends (OLNG)", "Opex", "Dividends (KOLNG) - RHS", "Capex"}, ListSelectableMetrics(table, nil))
	assert.Nil(t, ListSelectableMetrics(nil, DefaultExcluded))
}

func TestBuildSeriesAttachesAxes(t *testing.T) {
	table := scenarioTable(t)

	series, err := BuildSeries(table, Selection{Metrics: []string{"A"}, Years: YearRange{From: 2024, To: 2026}}, DefaultExcluded)
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2025, 2026}, series.Years)
	assert.Equal(t, PrimaryAxis(), series.Primary)
	assert.Equal(t, AxisBounds{Min: -300, Max: 2000}, series.Secondary)
}
