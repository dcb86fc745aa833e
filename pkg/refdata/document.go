package refdata

import (
	"bytes"
	"errors"
	"io"

	"github.com/gizisehat/gizi/pkg/history"
	"gopkg.in/yaml.v3"
)

// Document is the YAML form of reference data.
type Document struct {
	Growth     []TableDoc         `yaml:"growth"`
	WeightGain []history.GainBand `yaml:"weight_gain"`
	Targets    []TargetDoc        `yaml:"targets"`
	Foods      []FoodDoc          `yaml:"foods"`
	MealPlans  []MealPlanDoc      `yaml:"meal_plans"`
	Greeting   string             `yaml:"greeting"`
	Intents    []IntentDoc        `yaml:"intents"`
	Facilities []FacilityDoc      `yaml:"facilities"`
}

// TableDoc is a growth table. Every node is [index, L, M, S].
type TableDoc struct {
	Metric string      `yaml:"metric"`
	Sex    string      `yaml:"sex"`
	AgeMin float64     `yaml:"age_min"`
	AgeMax float64     `yaml:"age_max"`
	Nodes  [][]float64 `yaml:"nodes"`
}

// NutrientsDoc lists nutrient amounts by name.
type NutrientsDoc struct {
	Energy  float64 `yaml:"energy"`
	Protein float64 `yaml:"protein"`
	Iron    float64 `yaml:"iron"`
	Zinc    float64 `yaml:"zinc"`
}

// TargetDoc is a daily target band.
type TargetDoc struct {
	FromMonths float64      `yaml:"from_months"`
	ToMonths   float64      `yaml:"to_months"`
	Daily      NutrientsDoc `yaml:"daily"`
}

// FoodDoc is a catalog food.
type FoodDoc struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Portion      string       `yaml:"portion"`
	Nutrients    NutrientsDoc `yaml:"nutrients"`
	Cost         float64      `yaml:"cost"`
	MinAgeMonths float64      `yaml:"min_age_months"`
	Ingredients  []string     `yaml:"ingredients"`
}

// MealPlanDoc is a feeding schedule for an age band.
type MealPlanDoc struct {
	FromMonths float64   `yaml:"from_months"`
	ToMonths   float64   `yaml:"to_months"`
	Meals      []MealDoc `yaml:"meals"`
}

// MealDoc is one slot of a feeding schedule.
type MealDoc struct {
	Time        string `yaml:"time"`
	Meal        string `yaml:"meal"`
	Description string `yaml:"description"`
}

// IntentDoc is an assistant intent.
type IntentDoc struct {
	ID           string   `yaml:"id"`
	QuickReply   string   `yaml:"quick_reply"`
	Keywords     []string `yaml:"keywords"`
	Priority     int      `yaml:"priority"`
	Template     string   `yaml:"template"`
	LiveTemplate string   `yaml:"live_template"`
	Needs        []string `yaml:"needs"`
	Service      string   `yaml:"service"`
	Fallback     bool     `yaml:"fallback"`
}

// FacilityDoc is a health facility.
type FacilityDoc struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	DistanceKm   float64  `yaml:"distance_km"`
	Address      string   `yaml:"address"`
	Phone        string   `yaml:"phone"`
	Hours        string   `yaml:"hours"`
	Services     []string `yaml:"services"`
	NextSchedule string   `yaml:"next_schedule"`
}

// Parse decodes a reference document. Unknown fields are errors.
func Parse(source string, r io.Reader) (Document, error) {
	var res Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&res); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("document is empty")
		}
		return Document{}, ParseError(source, err)
	}
	return res, nil
}

// ParseBytes decodes a reference document from memory.
func ParseBytes(source string, b []byte) (Document, error) {
	return Parse(source, bytes.NewReader(b))
}
