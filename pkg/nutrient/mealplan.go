package nutrient

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Meal is one slot of a daily feeding schedule.
type Meal struct {
	// Time is the clock time in HH:MM form.
	Time        string `json:"time"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MealPlanBand is the feeding schedule for ages in [FromMonths, ToMonths).
type MealPlanBand struct {
	FromMonths float64 `json:"from_months"`
	ToMonths   float64 `json:"to_months"`
	Meals      []Meal  `json:"meals"`
}

// Label renders the age band, e.g. "6-8 bulan".
func (b MealPlanBand) Label() string {
	return fmt.Sprintf("%g-%g bulan", b.FromMonths, b.ToMonths-1)
}

// MealPlan is an ordered, read-only list of feeding schedules by age.
type MealPlan struct {
	bands []MealPlanBand
}

// NewMealPlan validates that bands are ordered, do not overlap and have
// meals in clock order.
func NewMealPlan(bands ...MealPlanBand) (*MealPlan, error) {
	res := &MealPlan{bands: make([]MealPlanBand, len(bands))}
	for i, b := range bands {
		if b.ToMonths <= b.FromMonths {
			return nil, fmt.Errorf("meal plan band %g-%g is empty",
				b.FromMonths, b.ToMonths)
		}
		if i > 0 && b.FromMonths < bands[i-1].ToMonths {
			return nil, fmt.Errorf("meal plan band %g-%g overlaps previous band",
				b.FromMonths, b.ToMonths)
		}
		if len(b.Meals) == 0 {
			return nil, fmt.Errorf("meal plan band %g-%g has no meals",
				b.FromMonths, b.ToMonths)
		}
		var prev time.Time
		for j, m := range b.Meals {
			at, err := time.Parse("15:04", m.Time)
			if err != nil {
				return nil, fmt.Errorf("meal plan band %g-%g: meal %q has time %q, expected HH:MM",
					b.FromMonths, b.ToMonths, m.Name, m.Time)
			}
			if strings.TrimSpace(m.Name) == "" {
				return nil, fmt.Errorf("meal plan band %g-%g: meal at %s has no name",
					b.FromMonths, b.ToMonths, m.Time)
			}
			if j > 0 && !at.After(prev) {
				return nil, fmt.Errorf("meal plan band %g-%g: meal at %s is out of order",
					b.FromMonths, b.ToMonths, m.Time)
			}
			prev = at
		}
		b.Meals = slices.Clone(b.Meals)
		res.bands[i] = b
	}
	return res, nil
}

// For returns a copy of the schedule for the age band containing
// ageMonths.
func (p *MealPlan) For(ageMonths float64) (MealPlanBand, error) {
	if p != nil {
		for _, b := range p.bands {
			if ageMonths >= b.FromMonths && ageMonths < b.ToMonths {
				b.Meals = slices.Clone(b.Meals)
				return b, nil
			}
		}
	}
	return MealPlanBand{}, MealPlanGapError(ageMonths)
}

// Bands returns copies of all bands.
func (p *MealPlan) Bands() []MealPlanBand {
	if p == nil {
		return nil
	}
	res := make([]MealPlanBand, len(p.bands))
	for i, b := range p.bands {
		b.Meals = slices.Clone(b.Meals)
		res[i] = b
	}
	return res
}

// DayPlan is the feeding schedule of a child for a day.
type DayPlan struct {
	ChildID   string  `json:"child_id"`
	Date      string  `json:"date"`
	AgeMonths float64 `json:"age_months"`
	Band      string  `json:"band"`
	Meals     []Meal  `json:"meals"`
}
