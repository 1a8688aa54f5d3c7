package ui

import (
	"html/template"
	"strconv"

	"github.com/findash/findash/internal/dashboard"
	"github.com/findash/findash/internal/dashboard/svg"
)

// Chart labels.
const (
	ChartTitle           = "Cumulative Metrics and Specific Dividends Over Years"
	XAxisLabel           = "Year"
	PrimaryAxisLabel     = "Value in US$ Million"
	SecondaryAxisLabel   = "Dividends Value in US$ Million"
	EmptySelectionPrompt = "Please select at least one metric to display the chart."
)

// DashboardFilters represents the sanitized query of the dashboard page.
type DashboardFilters struct {
	Metrics   []string
	From      int
	To        int
	ShowTable bool
}

// Selection converts the filters into the domain selection.
func (f DashboardFilters) Selection() dashboard.Selection {
	return dashboard.Selection{
		Metrics: append([]string(nil), f.Metrics...),
		Years:   dashboard.YearRange{From: f.From, To: f.To},
	}
}

// MetricOption is one checkbox of the metric picker.
type MetricOption struct {
	Name     string
	Selected bool
}

// YearOption is one entry of the year range pickers.
type YearOption struct {
	Year     int
	Selected bool
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	Filters   DashboardFilters
	Metrics   []MetricOption
	FromYears []YearOption
	ToYears   []YearOption
	Excluded  []string

	// Prompt replaces the chart when nothing is selected. Query reproduces
	// the selection for chart and export links.
	Prompt   string
	ChartSVG template.HTML
	Query    template.URL
	Table    *TableView
}

// ChartRenderer abstracts SVG rendering of the combined chart.
type ChartRenderer interface {
	Combo(width, height int, data svg.ComboData, opts svg.ComboOpts) (template.HTML, error)
}

// ComboRenderer adapts a render function to ChartRenderer.
type ComboRenderer func(width, height int, data svg.ComboData, opts svg.ComboOpts) (template.HTML, error)

// Combo calls f.
func (f ComboRenderer) Combo(width, height int, data svg.ComboData, opts svg.ComboOpts) (template.HTML, error) {
	return f(width, height, data, opts)
}

// ChartOptions returns the labels of the dashboard chart.
func ChartOptions() svg.ComboOpts {
	return svg.ComboOpts{
		Title:          ChartTitle,
		Description:    "Cumulative stacked metrics on the left axis with dividend lines on the right axis",
		XLabel:         XAxisLabel,
		PrimaryLabel:   PrimaryAxisLabel,
		SecondaryLabel: SecondaryAxisLabel,
	}
}

// ToComboData converts derived series into renderer input.
func ToComboData(series dashboard.Series) svg.ComboData {
	labels := make([]string, 0, len(series.Years))
	for _, year := range series.Years {
		labels = append(labels, strconv.Itoa(year))
	}
	data := svg.ComboData{
		Labels: labels,
		Primary: svg.AxisRange{
			Min:   series.Primary.Min,
			Max:   series.Primary.Max,
			Ticks: series.Primary.Ticks(dashboard.PrimaryTickStep),
		},
		Secondary: svg.AxisRange{
			Min:   series.Secondary.Min,
			Max:   series.Secondary.Max,
			Ticks: series.Secondary.Ticks(dashboard.PrimaryTickStep * dashboard.SecondaryRatio),
		},
	}
	for _, s := range series.Stack {
		data.Stack = append(data.Stack, svg.StackedSeries{Label: s.Metric, Raw: s.Raw, Cumulative: s.Cumulative})
	}
	for _, l := range series.Lines {
		data.Lines = append(data.Lines, svg.LineSeries{Label: l.Metric, Values: l.Values})
	}
	return data
}

// ToMetricOptions marks the selected metrics among the selectable ones.
func ToMetricOptions(selectable, selected []string) []MetricOption {
	chosen := make(map[string]bool, len(selected))
	for _, name := range selected {
		chosen[name] = true
	}
	options := make([]MetricOption, 0, len(selectable))
	for _, name := range selectable {
		options = append(options, MetricOption{Name: name, Selected: chosen[name]})
	}
	return options
}

// ToYearOptions lists every table year, marking current.
func ToYearOptions(current int) []YearOption {
	years := dashboard.YearsBetween(dashboard.FirstYear, dashboard.LastYear)
	options := make([]YearOption, 0, len(years))
	for _, year := range years {
		options = append(options, YearOption{Year: year, Selected: year == current})
	}
	return options
}
