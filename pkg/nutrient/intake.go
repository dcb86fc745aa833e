package nutrient

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source tells how an intake entry was produced.
type Source string

const (
	SourceManual Source = "manual"
	SourcePhoto  Source = "photo"
	SourceImport Source = "import"
)

// IntakeEntry is one logged food for a child and a calendar day.
// Exactly one of FoodID and AdHoc is set.
type IntakeEntry struct {
	ID      string `json:"id"`
	ChildID string `json:"child_id"`
	// Date is the calendar day in YYYY-MM-DD form.
	Date   string   `json:"date"`
	FoodID string   `json:"food_id,omitempty"`
	AdHoc  *Amounts `json:"adhoc,omitempty"`
	// Description names an ad-hoc food, e.g. from photo analysis.
	Description string    `json:"description,omitempty"`
	Portion     float64   `json:"portion"`
	LoggedAt    time.Time `json:"logged_at"`
	Source      Source    `json:"source"`
}

// DateOf converts a moment into the calendar day used by intake logs.
func DateOf(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseDate checks a YYYY-MM-DD day.
func ParseDate(s string) (time.Time, error) {
	res, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ValidationError("date", s, "YYYY-MM-DD")
	}
	return res, nil
}

// normDate returns the canonical form of a day, or s unchanged when it
// is not a valid day.
func normDate(s string) string {
	d, err := ParseDate(s)
	if err != nil {
		return s
	}
	return DateOf(d)
}

// Validate checks the entry against the catalog.
func (e IntakeEntry) Validate(cat *Catalog) error {
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if math.IsNaN(e.Portion) || math.IsInf(e.Portion, 0) || e.Portion <= 0 {
		return ValidationError("portion", fmt.Sprint(e.Portion), "a positive number")
	}
	switch {
	case e.FoodID != "" && e.AdHoc != nil:
		return ValidationError("food", e.FoodID, "either a catalog food or ad-hoc nutrients")
	case e.FoodID == "" && e.AdHoc == nil:
		return ValidationError("food", "", "a catalog food or ad-hoc nutrients")
	case e.FoodID != "":
		if _, ok := cat.index[e.FoodID]; !ok {
			return ValidationError("food", e.FoodID, "a food from the catalog")
		}
	default:
		if !e.AdHoc.valid() {
			return ValidationError("nutrients", fmt.Sprint(*e.AdHoc), "finite non-negative amounts")
		}
	}
	return nil
}

// Contribution returns nutrients of the entry scaled by its portion.
func (e IntakeEntry) Contribution(cat *Catalog) Amounts {
	if e.AdHoc != nil {
		return e.AdHoc.Scale(e.Portion)
	}
	if i, ok := cat.index[e.FoodID]; ok {
		return cat.items[i].Nutrients.Scale(e.Portion)
	}
	return Amounts{}
}

// Aggregate sums the contributions of entries. The result does not
// depend on the order of entries.
func Aggregate(cat *Catalog, entries []IntakeEntry) Amounts {
	var cols [numNutrients][]float64
	for _, e := range entries {
		c := e.Contribution(cat)
		for i := range c {
			cols[i] = append(cols[i], c[i])
		}
	}
	var res Amounts
	for i, col := range cols {
		// summing in sorted order keeps the float result order-free
		slices.Sort(col)
		for _, v := range col {
			res[i] += v
		}
	}
	return res
}

func newEntryID() string {
	return uuid.NewString()
}
