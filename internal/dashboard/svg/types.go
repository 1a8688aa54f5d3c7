package svg

// AxisRange is the fixed value range of one y-axis together with the values
// that get a tick label and grid line.
type AxisRange struct {
	Min   float64
	Max   float64
	Ticks []float64
}

// StackedSeries is one segment row of the stacked bars. Segment i spans
// Cumulative[i]-Raw[i] .. Cumulative[i] on the primary axis.
type StackedSeries struct {
	Label      string
	Raw        []float64
	Cumulative []float64
}

// LineSeries is drawn on the secondary axis.
type LineSeries struct {
	Label  string
	Values []float64
}

// ComboData is the input of Combo. Every series carries one value per label.
type ComboData struct {
	Labels    []string
	Stack     []StackedSeries
	Lines     []LineSeries
	Primary   AxisRange
	Secondary AxisRange
}

// ComboOpts customises the combined bar and line chart.
type ComboOpts struct {
	Title          string
	Description    string
	XLabel         string
	PrimaryLabel   string
	SecondaryLabel string
	BarColors      []string
	LineColors     []string
	AxisColor      string
	GridColor      string
}

// Defaults for the dashboard chart.
const (
	DefaultWidth  = 960
	DefaultHeight = 560

	marginLeft   = 84.0
	marginRight  = 92.0
	marginTop    = 56.0
	axisBand     = 64.0
	legendRow    = 18.0
	legendSwatch = 10.0
	charWidth    = 6.2
)

var (
	defaultBarColors  = []string{"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a", "#19d3f3", "#ff6692", "#b6e880", "#ff97ff", "#fecb52"}
	defaultLineColors = []string{"#111827", "#b91c1c", "#0f766e", "#7c3aed"}
)
