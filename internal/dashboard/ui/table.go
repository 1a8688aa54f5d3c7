package ui

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/findash/findash/internal/dashboard"
)

var numberPrinter = message.NewPrinter(language.English)

// TableView is the full source table formatted for display.
type TableView struct {
	Years []int      `json:"years"`
	Rows  []TableRow `json:"rows"`
}

// TableRow is one formatted source row.
type TableRow struct {
	Metric   string   `json:"metric"`
	Unit     string   `json:"unit"`
	Values   []string `json:"values"`
	Excluded bool     `json:"excluded"`
}

// ToTableView formats every row and year column of t. Rows of excluded
// metrics are flagged so templates can tell overlay rows apart.
func ToTableView(t *dashboard.Table, excluded []string) TableView {
	view := TableView{Years: dashboard.YearsBetween(dashboard.FirstYear, dashboard.LastYear), Rows: []TableRow{}}
	if t == nil {
		return view
	}
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}
	for _, row := range t.Rows {
		out := TableRow{
			Metric:   row.Metric,
			Unit:     row.Unit,
			Values:   make([]string, 0, len(view.Years)),
			Excluded: skip[row.Metric],
		}
		for _, year := range view.Years {
			out.Values = append(out.Values, FormatAmount(row.Value(year)))
		}
		view.Rows = append(view.Rows, out)
	}
	return view
}

// FormatAmount prints v with English grouping and two decimals.
func FormatAmount(v decimal.Decimal) string {
	return numberPrinter.Sprintf("%.2f", v.Round(2).InexactFloat64())
}
