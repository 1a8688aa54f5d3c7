package svg

import (
	"strings"
	"testing"
)

func sampleData() ComboData {
	return ComboData{
		Labels: []string{"2023", "2024"},
		Stack: []StackedSeries{
			{Label: "A", Raw: []float64{10, 20}, Cumulative: []float64{10, 20}},
			{Label: "B & Co", Raw: []float64{5, 5}, Cumulative: []float64{15, 25}},
		},
		Lines: []LineSeries{
			{Label: "Dividends (OLNG)", Values: []float64{1, 2}},
		},
		Primary:   AxisRange{Min: -1500, Max: 10000, Ticks: []float64{0, 2000, 4000, 6000, 8000, 10000}},
		Secondary: AxisRange{Min: -300, Max: 2000, Ticks: []float64{0, 400, 800, 1200, 1600, 2000}},
	}
}

func TestComboProducesSVG(t *testing.T) {
	html, err := Combo(0, 0, sampleData(), ComboOpts{
		Title:          "Cumulative Metrics",
		XLabel:         "Year",
		PrimaryLabel:   "Value in US$ Million",
		SecondaryLabel: "Dividends Value in US$ Million",
	})
	if err != nil {
		t.Fatalf("combo renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") || !strings.HasSuffix(output, "</svg>") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if got := strings.Count(output, "<rect x"); got < 4 {
		t.Fatalf("expected four bar segments plus legend swatches, got %d rects", got)
	}
	if !strings.Contains(output, "<path d=\"M") {
		t.Fatalf("expected overlay line path")
	}
	for _, label := range []string{"Year", "Value in US$ Million", "Dividends Value in US$ Million", "2,000", "10,000", "400"} {
		if !strings.Contains(output, label) {
			t.Fatalf("expected %q in output", label)
		}
	}
	if !strings.Contains(output, "B &amp; Co") {
		t.Fatalf("expected escaped legend label")
	}
	if !strings.Contains(output, "aria-labelledby") {
		t.Fatalf("expected accessibility attributes")
	}
}

func TestComboLegendOrder(t *testing.T) {
	html, err := Combo(960, 560, sampleData(), ComboOpts{Title: "Legend"})
	if err != nil {
		t.Fatalf("combo renderer error: %v", err)
	}
	output := string(html)
	legend := output[strings.LastIndex(output, "Axes"):]
	a := strings.Index(legend, ">A</text>")
	b := strings.Index(legend, ">B &amp; Co</text>")
	d := strings.Index(legend, ">Dividends (OLNG)</text>")
	if a < 0 || b < 0 || d < 0 {
		t.Fatalf("legend entries missing: %d %d %d", a, b, d)
	}
	if !(a < b && b < d) {
		t.Fatalf("expected stacked legend before line legend, got %d %d %d", a, b, d)
	}
}

func TestComboClipsOutOfRangeValues(t *testing.T) {
	data := sampleData()
	data.Stack = []StackedSeries{{Label: "Huge", Raw: []float64{50000, 1}, Cumulative: []float64{50000, 1}}}
	data.Lines = []LineSeries{{Label: "Low", Values: []float64{-9000, 0}}}
	html, err := Combo(960, 560, data, ComboOpts{})
	if err != nil {
		t.Fatalf("combo renderer error: %v", err)
	}
	output := string(html)
	// Top of the plot area sits at the top margin.
	if !strings.Contains(output, "y=\"56.00\"") {
		t.Fatalf("expected clipped bar to start at the plot top")
	}
	if strings.Contains(output, "y=\"-") || strings.Contains(output, "cy=\"-") {
		t.Fatalf("expected no negative coordinates")
	}
}

func TestComboValidatesInput(t *testing.T) {
	if _, err := Combo(960, 560, ComboData{}, ComboOpts{}); err == nil {
		t.Fatalf("expected error for missing labels")
	}
	data := sampleData()
	data.Stack[0].Raw = []float64{1}
	if _, err := Combo(960, 560, data, ComboOpts{}); err == nil {
		t.Fatalf("expected error for mismatched series")
	}
	data = sampleData()
	data.Primary = AxisRange{}
	if _, err := Combo(960, 560, data, ComboOpts{}); err == nil {
		t.Fatalf("expected error for empty axis")
	}
	if _, err := Combo(120, 80, sampleData(), ComboOpts{}); err == nil {
		t.Fatalf("expected error for tiny viewport")
	}
}

func TestFormatTick(t *testing.T) {
	cases := map[float64]string{0: "0", 400: "400", -1500: "-1,500", 10000: "10,000", 2.5: "2.5", 1234567: "1,234,567"}
	for in, want := range cases {
		if got := formatTick(in); got != want {
			t.Fatalf("formatTick(%v) = %q want %q", in, got, want)
		}
	}
}
