package growth

import (
	"math"
	"slices"

	"github.com/gizisehat/gizi/pkg/child"
)

// ChartSD are the z-score lines drawn on growth charts.
var ChartSD = []float64{-3, -2, 0, 2, 3}

// maxCurvePoints bounds the size of a curve.
const maxCurvePoints = 2000

// CurvePoint holds reference values at one index, one per ChartSD line.
type CurvePoint struct {
	Index  float64   `json:"index"`
	Values []float64 `json:"values"`
}

// Curve is the set of reference lines of one table.
type Curve struct {
	Metric Metric       `json:"metric"`
	Sex    child.Sex    `json:"sex"`
	SD     []float64    `json:"sd"`
	Points []CurvePoint `json:"points"`
}

// Curve computes chart lines of the metric for the sex, from the first
// to the last tabulated index, every step months (cm for
// weight-for-height).
func (c *Calculator) Curve(m Metric, sex child.Sex, step float64) (Curve, error) {
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return Curve{}, ValidationError("step", formatFloat(step), "a positive number")
	}
	t, ok := c.std.tables[tableKey{m, sex}]
	if !ok {
		return Curve{}, ReferenceDataGapError(m, sex, 0, 0, 0)
	}
	lo, hi := t.IndexRange()
	if (hi-lo)/step >= maxCurvePoints {
		return Curve{}, ValidationError("step", formatFloat(step), "a coarser step")
	}

	res := Curve{Metric: m, Sex: sex, SD: slices.Clone(ChartSD)}
	for i := 0; ; i++ {
		idx := min(lo+float64(i)*step, hi)
		lms, _ := t.Lookup(idx)
		p := CurvePoint{Index: idx, Values: make([]float64, len(ChartSD))}
		for j, z := range ChartSD {
			p.Values[j] = lms.Value(z)
		}
		res.Points = append(res.Points, p)
		if idx >= hi {
			break
		}
	}
	return res, nil
}

// Line returns the values of the line at z, or false when z is not one
// of ChartSD.
func (c Curve) Line(z float64) ([]float64, bool) {
	j := slices.Index(c.SD, z)
	if j < 0 {
		return nil, false
	}
	res := make([]float64, len(c.Points))
	for i, p := range c.Points {
		res[i] = p.Values[j]
	}
	return res, true
}
