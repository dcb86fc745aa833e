// Package refdata builds the immutable reference data of the engine:
// growth standards, weight gain bands, nutrient targets, food catalog,
// meal plans, assistant intents and health facilities.
package refdata

import (
	"fmt"

	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/facility"
	"github.com/gizisehat/gizi/pkg/growth"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/gizisehat/gizi/pkg/templates"
)

// Data is loaded once and shared read-only by every component.
type Data struct {
	Standards  *growth.Standards
	Gains      history.GainTable
	Targets    *nutrient.Targets
	Catalog    *nutrient.Catalog
	MealPlan   *nutrient.MealPlan
	Intents    *assistant.Table
	Facilities *facility.Directory
}

// Default builds reference data embedded in the binary.
func Default() (*Data, error) {
	doc, err := ParseBytes("embedded reference.yaml", templates.ReferenceYAML)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// Build validates the document and constructs reference components.
func Build(doc Document) (*Data, error) {
	var res Data
	var err error

	if res.Standards, err = buildStandards(doc.Growth); err != nil {
		return nil, BuildError("growth", err)
	}

	res.Gains = history.GainTable(doc.WeightGain)
	if err = res.Gains.Validate(); err != nil {
		return nil, BuildError("weight_gain", err)
	}

	bands := make([]nutrient.TargetBand, len(doc.Targets))
	for i, v := range doc.Targets {
		bands[i] = nutrient.TargetBand{
			FromMonths: v.FromMonths,
			ToMonths:   v.ToMonths,
			Daily:      v.Daily.amounts(),
		}
	}
	if res.Targets, err = nutrient.NewTargets(bands...); err != nil {
		return nil, BuildError("targets", err)
	}

	foods := make([]nutrient.FoodItem, len(doc.Foods))
	for i, v := range doc.Foods {
		foods[i] = nutrient.FoodItem{
			ID:           v.ID,
			Name:         v.Name,
			Portion:      v.Portion,
			Nutrients:    v.Nutrients.amounts(),
			Cost:         v.Cost,
			MinAgeMonths: v.MinAgeMonths,
			Ingredients:  v.Ingredients,
		}
	}
	if res.Catalog, err = nutrient.NewCatalog(foods...); err != nil {
		return nil, BuildError("foods", err)
	}

	plans := make([]nutrient.MealPlanBand, len(doc.MealPlans))
	for i, v := range doc.MealPlans {
		meals := make([]nutrient.Meal, len(v.Meals))
		for j, m := range v.Meals {
			meals[j] = nutrient.Meal{Time: m.Time, Name: m.Meal, Description: m.Description}
		}
		plans[i] = nutrient.MealPlanBand{
			FromMonths: v.FromMonths,
			ToMonths:   v.ToMonths,
			Meals:      meals,
		}
	}
	if res.MealPlan, err = nutrient.NewMealPlan(plans...); err != nil {
		return nil, BuildError("meal_plans", err)
	}

	intents := make([]assistant.Intent, len(doc.Intents))
	for i, v := range doc.Intents {
		it := assistant.Intent{
			ID:           v.ID,
			QuickReply:   v.QuickReply,
			Keywords:     v.Keywords,
			Priority:     v.Priority,
			Template:     v.Template,
			LiveTemplate: v.LiveTemplate,
			Service:      v.Service,
			Fallback:     v.Fallback,
		}
		for _, n := range v.Needs {
			need := assistant.Need(n)
			switch need {
			case assistant.NeedProgress, assistant.NeedStatus,
				assistant.NeedFacility, assistant.NeedPlan:
				it.Needs = append(it.Needs, need)
			default:
				return nil, BuildError("intents",
					fmt.Errorf("intent %q has unknown need %q", v.ID, n))
			}
		}
		intents[i] = it
	}
	if res.Intents, err = assistant.NewTable(doc.Greeting, intents...); err != nil {
		return nil, BuildError("intents", err)
	}

	facs := make([]facility.Facility, len(doc.Facilities))
	for i, v := range doc.Facilities {
		t := facility.ParseType(v.Type)
		if t == facility.UnknownType {
			return nil, BuildError("facilities",
				fmt.Errorf("facility %q has unknown type %q", v.Name, v.Type))
		}
		facs[i] = facility.Facility{
			ID:           v.ID,
			Name:         v.Name,
			Type:         t,
			DistanceKm:   v.DistanceKm,
			Address:      v.Address,
			Phone:        v.Phone,
			Hours:        v.Hours,
			Services:     v.Services,
			NextSchedule: v.NextSchedule,
		}
	}
	if res.Facilities, err = facility.NewDirectory(facs...); err != nil {
		return nil, BuildError("facilities", err)
	}

	return &res, nil
}

func buildStandards(docs []TableDoc) (*growth.Standards, error) {
	tables := make([]growth.Table, 0, len(docs))
	for _, v := range docs {
		m := growth.ParseMetric(v.Metric)
		if m == growth.UnknownMetric {
			return nil, fmt.Errorf("unknown metric %q", v.Metric)
		}
		sex, err := child.ParseSex(v.Sex)
		if err != nil {
			return nil, fmt.Errorf("%s table: unknown sex %q", v.Metric, v.Sex)
		}
		t := growth.Table{
			Metric: m,
			Sex:    sex,
			AgeMin: v.AgeMin,
			AgeMax: v.AgeMax,
			Nodes:  make([]growth.Node, len(v.Nodes)),
		}
		for i, n := range v.Nodes {
			if len(n) != 4 {
				return nil, fmt.Errorf("%s/%s node #%d must be [index, L, M, S]",
					m, sex, i+1)
			}
			t.Nodes[i] = growth.Node{
				Index: n[0],
				LMS:   growth.LMS{L: n[1], M: n[2], S: n[3]},
			}
		}
		tables = append(tables, t)
	}
	return growth.NewStandards(tables...)
}

func (n NutrientsDoc) amounts() nutrient.Amounts {
	return nutrient.NewAmounts(n.Energy, n.Protein, n.Iron, n.Zinc)
}
