package refdata_test

import (
	"strings"
	"testing"

	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/growth"
	"github.com/gizisehat/gizi/pkg/refdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	data, err := refdata.Default()
	require.NoError(t, err)

	assert.Equal(t, 10, data.Standards.Len())
	for _, m := range growth.Metrics {
		for _, sex := range []child.Sex{child.Female, child.Male} {
			tbl, ok := data.Standards.Table(m, sex)
			require.True(t, ok, "%s/%s", m, sex)
			assert.Equal(t, 60.0, tbl.AgeMax)
		}
	}
	assert.Equal(t, 15, data.Catalog.Len())
	assert.Equal(t, 3, data.Facilities.Len())
	assert.Equal(t, "fallback", data.Intents.Fallback().ID)
	assert.Len(t, data.Intents.QuickReplies(), 6)
	assert.True(t, strings.HasPrefix(data.Intents.Greeting(), "Halo!"))

	minGain, ok := data.Gains.MinGain(8)
	assert.True(t, ok)
	assert.Equal(t, 0.2, minGain)
	_, ok = data.Gains.MinGain(60)
	assert.True(t, ok)

	daily, err := data.Targets.For(8)
	require.NoError(t, err)
	assert.Equal(t, 600.0, daily[0])
	_, err = data.Targets.For(60)
	assert.NoError(t, err)
}

func TestDefaultScenarios(t *testing.T) {
	data, err := refdata.Default()
	require.NoError(t, err)
	calc := growth.NewCalculator(data.Standards)

	res, err := calc.ZScore(growth.WeightForAge, child.Female, 8, 8.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, res.Z, 0.01)

	muac := 13.5
	all, err := calc.Assess(growth.Input{
		Sex: child.Female, AgeMonths: 8, WeightKg: 8, HeightCm: 70, MUACCm: &muac,
	})
	require.NoError(t, err)
	for _, r := range all {
		assert.Less(t, r.Z, 2.0, r.Metric.String())
		assert.Greater(t, r.Z, -2.0, r.Metric.String())
	}

	_, err = calc.ZScore(growth.WeightForAge, child.Female, 70, 20)
	assert.True(t, errcode.Is(err, errcode.ReferenceDataGap))

	// L of boys weight-for-age crosses zero at 21 months
	res, err = calc.ZScore(growth.WeightForAge, child.Male, 21, 11.5486)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Z, 1e-9)

	band, err := data.MealPlan.For(7)
	require.NoError(t, err)
	assert.Equal(t, "6-8 bulan", band.Label())
	assert.Equal(t, "Bubur Saring", band.Meals[1].Name)
	for _, m := range []float64{0, 10, 30, 60.9} {
		_, err = data.MealPlan.For(m)
		assert.NoError(t, err, m)
	}
	_, err = data.MealPlan.For(61)
	assert.True(t, errcode.Is(err, errcode.ReferenceDataGap))

	it, _, err := data.Intents.Match("MPASI 9-11 bulan")
	require.NoError(t, err)
	assert.Equal(t, "mpasi", it.ID)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		msg  string
		yaml string
		code any
	}{
		{"empty", "", errcode.ReferenceParseError},
		{"unknown field", "colour: red\n", errcode.ReferenceParseError},
		{"bad metric", `
growth:
  - {metric: head-for-age, sex: female, age_min: 0, age_max: 1, nodes: [[0, 1, 1, 0.1]]}
`, errcode.ReferenceBuildError},
		{"short node", `
growth:
  - {metric: wfa, sex: female, age_min: 0, age_max: 1, nodes: [[0, 1, 1]]}
`, errcode.ReferenceBuildError},
		{"no fallback", `
intents:
  - {id: a, keywords: [a], template: A}
`, errcode.ReferenceBuildError},
		{"unknown need", `
intents:
  - {id: a, keywords: [a], template: A, needs: [weather]}
  - {id: b, fallback: true, template: B}
`, errcode.ReferenceBuildError},
		{"meal time", `
meal_plans:
  - {from_months: 6, to_months: 9, meals: [{time: "8 pagi", meal: Bubur}]}
`, errcode.ReferenceBuildError},
		{"facility type", `
intents:
  - {id: b, fallback: true, template: B}
facilities:
  - {name: Apotek, type: pharmacy}
`, errcode.ReferenceBuildError},
	}
	for _, v := range tests {
		doc, err := refdata.ParseBytes("test", []byte(v.yaml))
		if err == nil {
			_, err = refdata.Build(doc)
		}
		require.Error(t, err, v.msg)
		assert.EqualValues(t, v.code, errcode.CodeOf(err), v.msg)
	}
}

func TestBuildMinimal(t *testing.T) {
	doc, err := refdata.ParseBytes("test", []byte(`
intents:
  - id: hi
    keywords: [halo]
    template: "Halo {{.Name}}"
  - id: fb
    fallback: true
    template: Maaf
`))
	require.NoError(t, err)
	data, err := refdata.Build(doc)
	require.NoError(t, err)

	eng := assistant.New(data.Intents)
	msg, err := eng.Respond(nil, nil, assistant.Input{Text: "HALO"})
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.IntentID)
	assert.Equal(t, "Halo", msg.Text)
}
