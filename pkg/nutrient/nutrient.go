// Package nutrient tracks daily intake of a child against age-based
// targets and ranks catalog foods that close the remaining deficit.
package nutrient

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Nutrient is a tracked dietary component.
type Nutrient int

const (
	Energy Nutrient = iota
	Protein
	Iron
	Zinc
	numNutrients
)

// Nutrients lists tracked nutrients in report order.
var Nutrients = []Nutrient{Energy, Protein, Iron, Zinc}

func (n Nutrient) String() string {
	switch n {
	case Energy:
		return "energy"
	case Protein:
		return "protein"
	case Iron:
		return "iron"
	case Zinc:
		return "zinc"
	default:
		return "unknown"
	}
}

// Unit of the daily amount.
func (n Nutrient) Unit() string {
	switch n {
	case Energy:
		return "kkal"
	case Protein:
		return "g"
	default:
		return "mg"
	}
}

// Label is the Indonesian name shown to caregivers.
func (n Nutrient) Label() string {
	switch n {
	case Energy:
		return "kalori"
	case Protein:
		return "protein"
	case Iron:
		return "zat besi"
	case Zinc:
		return "zinc"
	default:
		return "?"
	}
}

// ParseNutrient accepts canonical and Indonesian names.
func ParseNutrient(s string) (Nutrient, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "energy", "calories", "kalori", "energi", "kcal", "kkal":
		return Energy, true
	case "protein":
		return Protein, true
	case "iron", "zat besi", "fe":
		return Iron, true
	case "zinc", "seng", "zn":
		return Zinc, true
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (n Nutrient) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Nutrient) UnmarshalText(b []byte) error {
	res, ok := ParseNutrient(string(b))
	if !ok {
		return fmt.Errorf("unknown nutrient %q", string(b))
	}
	*n = res
	return nil
}

// Amounts holds one value per nutrient. It is a value type, copies never
// share state.
type Amounts [numNutrients]float64

// NewAmounts creates Amounts from the four nutrient values.
func NewAmounts(energy, protein, iron, zinc float64) Amounts {
	return Amounts{energy, protein, iron, zinc}
}

// Get returns the amount of a nutrient.
func (a Amounts) Get(n Nutrient) float64 {
	if n < 0 || n >= numNutrients {
		return 0
	}
	return a[n]
}

// Scale multiplies every amount by f.
func (a Amounts) Scale(f float64) Amounts {
	for i := range a {
		a[i] *= f
	}
	return a
}

// Deficit returns target minus a, clipped at zero.
func (a Amounts) Deficit(target Amounts) Amounts {
	var res Amounts
	for i := range a {
		res[i] = max(target[i]-a[i], 0)
	}
	return res
}

// IsZero is true when no nutrient has a positive amount.
func (a Amounts) IsZero() bool {
	for _, v := range a {
		if v > 0 {
			return false
		}
	}
	return true
}

func (a Amounts) valid() bool {
	for _, v := range a {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MarshalJSON renders amounts as an object keyed by nutrient name.
func (a Amounts) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, numNutrients)
	for _, n := range Nutrients {
		m[n.String()] = a[n]
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads an object keyed by nutrient name.
func (a *Amounts) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var res Amounts
	for k, v := range m {
		n, ok := ParseNutrient(k)
		if !ok {
			return fmt.Errorf("unknown nutrient %q", k)
		}
		res[n] = v
	}
	*a = res
	return nil
}
