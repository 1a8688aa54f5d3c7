package svg

import (
	"fmt"
	"math"
	"strings"
)

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func pick(colors []string, idx int) string {
	return colors[idx%len(colors)]
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

// formatTick prints axis values with thousands grouping.
func formatTick(v float64) string {
	if almostEqual(v, 0) {
		return "0"
	}
	if !almostEqual(v, math.Round(v)) {
		return fmt.Sprintf("%.1f", v)
	}
	digits := fmt.Sprintf("%.0f", math.Abs(v))
	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// yScale maps values of one axis onto the plot's vertical pixel span.
type yScale struct {
	min, max    float64
	top, bottom float64
}

func (s yScale) at(v float64) float64 {
	v = clamp(v, s.min, s.max)
	return s.bottom - (v-s.min)/(s.max-s.min)*(s.bottom-s.top)
}

type legendItem struct {
	label  string
	color  string
	isLine bool
}

// legendRows splits items into rows no wider than width.
func legendRows(items []legendItem, width float64) [][]legendItem {
	var rows [][]legendItem
	var current []legendItem
	used := 0.0
	for _, item := range items {
		w := legendItemWidth(item)
		if len(current) > 0 && used+w > width {
			rows = append(rows, current)
			current = nil
			used = 0
		}
		current = append(current, item)
		used += w
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

func legendItemWidth(item legendItem) float64 {
	return legendSwatch + 8 + float64(len([]rune(item.label)))*charWidth + 18
}
