package dashboard

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StackSeries is one stacked bar segment series. Segment i spans
// Cumulative[i]-Raw[i] .. Cumulative[i].
type StackSeries struct {
	Metric     string    `json:"metric"`
	Unit       string    `json:"unit"`
	Raw        []float64 `json:"raw"`
	Cumulative []float64 `json:"cumulative"`
}

// StackData holds the stacked series of the selected rows in table order.
type StackData struct {
	Years  []int         `json:"years"`
	Series []StackSeries `json:"series"`
}

// LineSeries is one excluded metric drawn on the secondary axis.
type LineSeries struct {
	Metric string    `json:"metric"`
	Unit   string    `json:"unit"`
	Values []float64 `json:"values"`
}

// LineData holds the overlay lines in the excluded order.
type LineData struct {
	Years  []int        `json:"years"`
	Series []LineSeries `json:"series"`
}

// Series is everything the chart needs for one selection.
type Series struct {
	Years     []int         `json:"years"`
	Stack     []StackSeries `json:"stack"`
	Lines     []LineSeries  `json:"lines"`
	Primary   AxisBounds    `json:"primary"`
	Secondary AxisBounds    `json:"secondary"`
}

// ListSelectableMetrics returns the distinct metric names of t that are not
// excluded, in first-occurrence order.
func ListSelectableMetrics(t *Table, excluded []string) []string {
	if t == nil {
		return nil
	}
	skip := toSet(excluded)
	seen := make(map[string]struct{}, len(t.Rows))
	metrics := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if _, ok := skip[row.Metric]; ok {
			continue
		}
		if _, ok := seen[row.Metric]; ok {
			continue
		}
		seen[row.Metric] = struct{}{}
		metrics = append(metrics, row.Metric)
	}
	return metrics
}

// MissingExcluded lists the excluded metrics that t does not carry.
func MissingExcluded(t *Table, excluded []string) []string {
	var missing []string
	for _, name := range excluded {
		if _, ok := t.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// FilterAndTransform computes running sums over the selected rows and the raw
// overlay lines for the excluded metrics. Rows sharing a metric name are all
// stacked. Callers handle ErrEmptySelection by prompting instead of charting.
func FilterAndTransform(t *Table, selected []string, years YearRange, excluded []string) (StackData, LineData, error) {
	if len(selected) == 0 {
		return StackData{}, LineData{}, ErrEmptySelection
	}
	if err := years.Validate(); err != nil {
		return StackData{}, LineData{}, err
	}
	if t == nil {
		return StackData{}, LineData{}, fmt.Errorf("%w: table not loaded", ErrDataLoad)
	}

	selectable := toSet(ListSelectableMetrics(t, excluded))
	for _, name := range selected {
		if _, ok := selectable[name]; !ok {
			return StackData{}, LineData{}, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
		}
	}

	span := years.Years()
	wanted := toSet(selected)
	running := make([]decimal.Decimal, len(span))

	stack := StackData{Years: span, Series: []StackSeries{}}
	for _, row := range t.Rows {
		if _, ok := wanted[row.Metric]; !ok {
			continue
		}
		series := StackSeries{
			Metric:     row.Metric,
			Unit:       row.Unit,
			Raw:        make([]float64, len(span)),
			Cumulative: make([]float64, len(span)),
		}
		for i, year := range span {
			value := row.Value(year)
			running[i] = running[i].Add(value)
			series.Raw[i] = value.InexactFloat64()
			series.Cumulative[i] = running[i].InexactFloat64()
		}
		stack.Series = append(stack.Series, series)
	}

	lines := LineData{Years: span, Series: []LineSeries{}}
	for _, name := range excluded {
		row, ok := t.Lookup(name)
		if !ok {
			continue
		}
		series := LineSeries{Metric: row.Metric, Unit: row.Unit, Values: make([]float64, len(span))}
		for i, year := range span {
			series.Values[i] = row.Value(year).InexactFloat64()
		}
		lines.Series = append(lines.Series, series)
	}
	return stack, lines, nil
}

// BuildSeries runs FilterAndTransform for sel and attaches the axis ranges.
func BuildSeries(t *Table, sel Selection, excluded []string) (Series, error) {
	if err := sel.Validate(); err != nil {
		return Series{}, err
	}
	stack, lines, err := FilterAndTransform(t, sel.Metrics, sel.Years, excluded)
	if err != nil {
		return Series{}, err
	}
	primary := PrimaryAxis()
	return Series{
		Years:     stack.Years,
		Stack:     stack.Series,
		Lines:     lines.Series,
		Primary:   primary,
		Secondary: SecondaryAxis(primary),
	}, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
