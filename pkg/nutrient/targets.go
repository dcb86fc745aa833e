package nutrient

import "fmt"

// TargetBand holds daily targets for ages in [FromMonths, ToMonths).
type TargetBand struct {
	FromMonths float64 `json:"from_months"`
	ToMonths   float64 `json:"to_months"`
	Daily      Amounts `json:"daily"`
}

// Targets is an ordered, read-only list of age bands.
type Targets struct {
	bands []TargetBand
}

// NewTargets validates that bands are ordered and do not overlap.
func NewTargets(bands ...TargetBand) (*Targets, error) {
	for i, b := range bands {
		if b.ToMonths <= b.FromMonths {
			return nil, fmt.Errorf("target band %g-%g is empty",
				b.FromMonths, b.ToMonths)
		}
		if !b.Daily.valid() {
			return nil, fmt.Errorf("target band %g-%g has negative or infinite amounts",
				b.FromMonths, b.ToMonths)
		}
		if i > 0 && b.FromMonths < bands[i-1].ToMonths {
			return nil, fmt.Errorf("target band %g-%g overlaps previous band",
				b.FromMonths, b.ToMonths)
		}
	}
	res := &Targets{bands: make([]TargetBand, len(bands))}
	copy(res.bands, bands)
	return res, nil
}

// For returns the daily targets of the age band containing ageMonths.
func (t *Targets) For(ageMonths float64) (Amounts, error) {
	for _, b := range t.bands {
		if ageMonths >= b.FromMonths && ageMonths < b.ToMonths {
			return b.Daily, nil
		}
	}
	return Amounts{}, ReferenceDataGapError(ageMonths)
}

// Bands returns a copy of the age bands.
func (t *Targets) Bands() []TargetBand {
	res := make([]TargetBand, len(t.bands))
	copy(res, t.bands)
	return res
}
