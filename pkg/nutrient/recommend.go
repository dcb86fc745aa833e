package nutrient

import (
	"cmp"
	"slices"
)

// Recommendation is a ranked food with the nutrients it helps close.
type Recommendation struct {
	Food FoodItem `json:"food"`
	// Score is the mean fraction of outstanding deficits covered by one
	// portion, divided by cost.
	Score  float64    `json:"score"`
	Covers []Nutrient `json:"covers"`
}

// Rank scores foods by the fraction of the outstanding deficit one
// portion satisfies per unit cost. Ties go to the cheaper food, then to
// the earlier food in the input. Foods that do not contribute to any
// outstanding nutrient are left out.
func Rank(foods []FoodItem, deficit Amounts) []Recommendation {
	var outstanding []Nutrient
	for _, n := range Nutrients {
		if deficit[n] > 0 {
			outstanding = append(outstanding, n)
		}
	}
	if len(outstanding) == 0 {
		return nil
	}

	type ranked struct {
		Recommendation
		pos int
	}
	var res []ranked
	for i, f := range foods {
		var covered float64
		var covers []Nutrient
		for _, n := range outstanding {
			amt := min(f.Nutrients[n], deficit[n])
			if amt <= 0 {
				continue
			}
			covered += amt / deficit[n]
			covers = append(covers, n)
		}
		if len(covers) == 0 {
			continue
		}
		res = append(res, ranked{
			Recommendation: Recommendation{
				Food:   f,
				Score:  covered / float64(len(outstanding)) / f.Cost,
				Covers: covers,
			},
			pos: i,
		})
	}

	slices.SortFunc(res, func(a, b ranked) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Food.Cost, b.Food.Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})

	out := make([]Recommendation, len(res))
	for i, v := range res {
		out[i] = v.Recommendation
	}
	return out
}
