package history

import "fmt"

// GainBand is the minimum expected monthly weight gain for ages in
// [FromMonths, ToMonths).
type GainBand struct {
	FromMonths    float64 `yaml:"from_months"`
	ToMonths      float64 `yaml:"to_months"`
	MinKgPerMonth float64 `yaml:"min_kg_per_month"`
}

// GainTable is an ordered list of non-overlapping gain bands.
type GainTable []GainBand

// Validate checks that bands are ordered and do not overlap.
func (g GainTable) Validate() error {
	for i, b := range g {
		if b.ToMonths <= b.FromMonths {
			return fmt.Errorf("gain band %g-%g is empty", b.FromMonths, b.ToMonths)
		}
		if b.MinKgPerMonth < 0 {
			return fmt.Errorf("gain band %g-%g has negative gain",
				b.FromMonths, b.ToMonths)
		}
		if i > 0 && b.FromMonths < g[i-1].ToMonths {
			return fmt.Errorf("gain band %g-%g overlaps previous band",
				b.FromMonths, b.ToMonths)
		}
	}
	return nil
}

// MinGain returns the minimum monthly gain for the age. The last band
// includes its upper bound.
func (g GainTable) MinGain(ageMonths float64) (float64, bool) {
	for i, b := range g {
		if ageMonths >= b.FromMonths &&
			(ageMonths < b.ToMonths || i == len(g)-1 && ageMonths == b.ToMonths) {
			return b.MinKgPerMonth, true
		}
	}
	return 0, false
}
