package nutrient

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gnames/gnuuid"
)

// FoodItem is a catalog food with nutrients per reference portion.
type FoodItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Portion describes the reference portion, e.g. "1 mangkuk".
	Portion   string  `json:"portion"`
	Nutrients Amounts `json:"nutrients"`
	// Cost of one portion in Rupiah.
	Cost         float64  `json:"cost"`
	MinAgeMonths float64  `json:"min_age_months"`
	Ingredients  []string `json:"ingredients,omitempty"`
}

// Catalog is an ordered, read-only set of foods.
type Catalog struct {
	items []FoodItem
	index map[string]int
}

// NewCatalog validates and copies items. Items without ID get a
// deterministic ID derived from the name.
func NewCatalog(items ...FoodItem) (*Catalog, error) {
	res := &Catalog{
		items: make([]FoodItem, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, v := range items {
		if strings.TrimSpace(v.Name) == "" {
			return nil, fmt.Errorf("food item %q has no name", v.ID)
		}
		if v.ID == "" {
			v.ID = gnuuid.New(v.Name).String()
		}
		if _, ok := res.index[v.ID]; ok {
			return nil, fmt.Errorf("duplicate food id %q", v.ID)
		}
		if !v.Nutrients.valid() {
			return nil, fmt.Errorf("food %q has negative or infinite nutrients", v.Name)
		}
		if v.Cost <= 0 {
			return nil, fmt.Errorf("food %q must have a positive cost", v.Name)
		}
		if v.MinAgeMonths < 0 {
			return nil, fmt.Errorf("food %q has negative minimum age", v.Name)
		}
		v.Ingredients = slices.Clone(v.Ingredients)
		res.index[v.ID] = len(res.items)
		res.items = append(res.items, v)
	}
	return res, nil
}

// Len returns the number of foods.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns copies of all foods in insertion order.
func (c *Catalog) Items() []FoodItem {
	res := make([]FoodItem, len(c.items))
	for i, v := range c.items {
		res[i] = v.clone()
	}
	return res
}

// Lookup finds a food by ID or by case-insensitive name.
func (c *Catalog) Lookup(key string) (FoodItem, bool) {
	if i, ok := c.index[key]; ok {
		return c.items[i].clone(), true
	}
	for _, v := range c.items {
		if strings.EqualFold(v.Name, strings.TrimSpace(key)) {
			return v.clone(), true
		}
	}
	return FoodItem{}, false
}

// Eligible returns foods suitable for the age, in catalog order.
func (c *Catalog) Eligible(ageMonths float64) []FoodItem {
	var res []FoodItem
	for _, v := range c.items {
		if ageMonths >= v.MinAgeMonths {
			res = append(res, v.clone())
		}
	}
	return res
}

func (f FoodItem) clone() FoodItem {
	f.Ingredients = slices.Clone(f.Ingredients)
	return f
}
