package nutrient

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NutrientProgress compares intake of one nutrient against its target.
type NutrientProgress struct {
	Nutrient Nutrient `json:"nutrient"`
	Current  float64  `json:"current"`
	Target   float64  `json:"target"`
	// Percent of the target reached, 100 when the target is zero.
	Percent float64 `json:"percent"`
}

// Progress is the daily intake summary of a child.
type Progress struct {
	ChildID   string             `json:"child_id"`
	Date      string             `json:"date"`
	AgeMonths float64            `json:"age_months"`
	Entries   int                `json:"entries"`
	Items     []NutrientProgress `json:"items"`
}

// NewProgress compares current intake with targets.
func NewProgress(current, target Amounts) []NutrientProgress {
	res := make([]NutrientProgress, 0, len(Nutrients))
	for _, n := range Nutrients {
		p := NutrientProgress{
			Nutrient: n,
			Current:  current[n],
			Target:   target[n],
			Percent:  100,
		}
		if p.Target > 0 {
			p.Percent = p.Current / p.Target * 100
		}
		res = append(res, p)
	}
	return res
}

// Get returns progress of a nutrient.
func (p Progress) Get(n Nutrient) NutrientProgress {
	for _, v := range p.Items {
		if v.Nutrient == n {
			return v
		}
	}
	return NutrientProgress{Nutrient: n, Percent: 100}
}

// Current returns the intake amounts.
func (p Progress) Current() Amounts {
	var res Amounts
	for _, v := range p.Items {
		res[v.Nutrient] = v.Current
	}
	return res
}

// Deficit returns the outstanding amounts, clipped at zero.
func (p Progress) Deficit() Amounts {
	var res Amounts
	for _, v := range p.Items {
		res[v.Nutrient] = max(v.Target-v.Current, 0)
	}
	return res
}

// String renders one line per nutrient, e.g. "energy: 520/600 (86.7%)".
func (p NutrientProgress) String() string {
	return fmt.Sprintf("%s: %s/%s (%s%%)",
		p.Nutrient, num(p.Current), num(p.Target), num(p.Percent))
}

// Shortfall is the caregiver message about missing nutrients, e.g.
// "Perlu tambahan: +80 kkal, +2g protein".
func (p Progress) Shortfall() string {
	d := p.Deficit()
	var parts []string
	for _, n := range Nutrients {
		if d[n] <= 0 {
			continue
		}
		if n == Energy {
			parts = append(parts, fmt.Sprintf("+%s %s", num(d[n]), n.Unit()))
			continue
		}
		parts = append(parts, fmt.Sprintf("+%s%s %s", num(d[n]), n.Unit(), n.Label()))
	}
	if len(parts) == 0 {
		return "Target gizi harian sudah tercapai."
	}
	return "Perlu tambahan: " + strings.Join(parts, ", ")
}

// num formats with at most one decimal and no trailing zero.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*10)/10, 'f', -1, 64)
}
