package dashboard

import "math"

// Fixed axis ranges of the combined chart. The secondary axis is the primary
// scaled by SecondaryRatio, so zero sits at the same height on both sides.
const (
	PrimaryMin     = -1500.0
	PrimaryMax     = 10000.0
	SecondaryMax   = 2000.0
	SecondaryRatio = SecondaryMax / PrimaryMax

	// PrimaryTickStep spaces the shared grid lines.
	PrimaryTickStep = 2000.0
)

// AxisBounds is a closed value range on one y-axis.
type AxisBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PrimaryAxis returns the range of the stacked bars.
func PrimaryAxis() AxisBounds {
	return AxisBounds{Min: PrimaryMin, Max: PrimaryMax}
}

// SecondaryAxis derives the overlay line range from the primary one.
func SecondaryAxis(primary AxisBounds) AxisBounds {
	return primary.Scale(SecondaryRatio)
}

// Scale multiplies both ends by factor.
func (a AxisBounds) Scale(factor float64) AxisBounds {
	return AxisBounds{Min: a.Min * factor, Max: a.Max * factor}
}

// Span is Max-Min.
func (a AxisBounds) Span() float64 { return a.Max - a.Min }

// Clamp pulls v into the range.
func (a AxisBounds) Clamp(v float64) float64 {
	return math.Max(a.Min, math.Min(a.Max, v))
}

// Ticks returns every multiple of step inside the range, ascending.
func (a AxisBounds) Ticks(step float64) []float64 {
	if step <= 0 || a.Max < a.Min {
		return nil
	}
	var ticks []float64
	for v := math.Ceil(a.Min/step) * step; v <= a.Max+step*1e-9; v += step {
		if v == 0 {
			v = 0 // drop negative zero
		}
		ticks = append(ticks, v)
	}
	return ticks
}
