package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Year bounds of the source schema.
const (
	FirstYear = 2023
	LastYear  = 2035
	YearCount = LastYear - FirstYear + 1

	leadingColumns = 2
)

// DefaultExcluded lists the dividend metrics drawn as overlay lines on the
// secondary axis. Order is the legend order.
var DefaultExcluded = []string{"Dividends (OLNG)", "Dividends (KOLNG) - RHS"}

// Row is a single metric record of the source table.
type Row struct {
	Metric string
	Unit   string
	// Values holds one entry per year, index 0 being FirstYear.
	Values []decimal.Decimal
}

// Value returns the row value for year, zero when out of range.
func (r Row) Value(year int) decimal.Decimal {
	idx := year - FirstYear
	if idx < 0 || idx >= len(r.Values) {
		return decimal.Zero
	}
	return r.Values[idx]
}

// Table is the immutable metric table loaded at startup.
type Table struct {
	// ID is derived from the source content, so every process loading the
	// same file agrees on it.
	ID       uuid.UUID
	Source   string
	LoadedAt time.Time
	Rows     []Row
}

// Years returns every year column of the table in ascending order.
func (t *Table) Years() []int {
	return YearsBetween(FirstYear, LastYear)
}

// Lookup returns the first row carrying metric.
func (t *Table) Lookup(metric string) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	for _, row := range t.Rows {
		if row.Metric == metric {
			return row, true
		}
	}
	return Row{}, false
}

// YearsBetween lists the years from..to inclusive.
func YearsBetween(from, to int) []int {
	if to < from {
		return nil
	}
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years
}
