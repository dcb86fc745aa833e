package classify_test

import (
	"testing"

	"github.com/gizisehat/gizi/pkg/classify"
	"github.com/gizisehat/gizi/pkg/growth"
	"github.com/stretchr/testify/assert"
)

func res(m growth.Metric, z float64) growth.Result {
	return growth.Result{
		Metric:      m,
		Z:           z,
		Percentile:  growth.Percentile(z),
		Implausible: z > m.PlausibleBound() || z < -m.PlausibleBound(),
	}
}

func ptr(f float64) *float64 { return &f }

func TestClassify(t *testing.T) {
	c := classify.New()

	tests := []struct {
		msg      string
		results  []growth.Result
		muac     *float64
		verdict  classify.Verdict
		driver   growth.Metric
		referral bool
		recheck  bool
	}{
		{
			msg: "all normal",
			results: []growth.Result{
				res(growth.WeightForAge, 0.05), res(growth.HeightForAge, 0.3),
				res(growth.WeightForHeight, -0.2), res(growth.BMIForAge, -0.1),
			},
			verdict: classify.Normal, driver: growth.WeightForHeight,
		},
		{
			msg: "muac severe override",
			results: []growth.Result{
				res(growth.WeightForAge, 0.05), res(growth.HeightForAge, 0.3),
				res(growth.WeightForHeight, -0.2), res(growth.BMIForAge, -0.1),
			},
			muac:    ptr(11.0),
			verdict: classify.Severe, driver: growth.MUACForAge, referral: true,
		},
		{
			msg: "muac moderate band raises normal",
			results: []growth.Result{
				res(growth.WeightForAge, 0), res(growth.WeightForHeight, 0),
			},
			muac:    ptr(12.0),
			verdict: classify.Moderate, driver: growth.MUACForAge,
		},
		{
			msg: "muac moderate band keeps severe",
			results: []growth.Result{
				res(growth.WeightForHeight, -3.4),
			},
			muac:    ptr(12.0),
			verdict: classify.Severe, driver: growth.WeightForHeight, referral: true,
		},
		{
			msg:     "muac normal",
			results: []growth.Result{res(growth.WeightForAge, 0)},
			muac:    ptr(13.5),
			verdict: classify.Normal, driver: growth.WeightForAge,
		},
		{
			msg: "stunting only",
			results: []growth.Result{
				res(growth.WeightForAge, -1), res(growth.HeightForAge, -2.5),
				res(growth.WeightForHeight, 0.1),
			},
			verdict: classify.Moderate, driver: growth.HeightForAge,
		},
		{
			msg: "acute outranks chronic at equal severity",
			results: []growth.Result{
				res(growth.HeightForAge, -2.5), res(growth.WeightForHeight, -2.1),
			},
			verdict: classify.Moderate, driver: growth.WeightForHeight,
		},
		{
			msg: "worst metric wins",
			results: []growth.Result{
				res(growth.WeightForHeight, -2.5), res(growth.HeightForAge, -3.5),
			},
			verdict: classify.Severe, driver: growth.HeightForAge, referral: true,
		},
		{
			msg: "overweight",
			results: []growth.Result{
				res(growth.WeightForAge, 1.5), res(growth.BMIForAge, 2.4),
			},
			verdict: classify.Overweight, driver: growth.BMIForAge,
		},
		{
			msg: "tall is normal",
			results: []growth.Result{
				res(growth.HeightForAge, 2.8), res(growth.WeightForAge, 0.5),
			},
			verdict: classify.Normal, driver: growth.WeightForAge,
		},
		{
			msg: "implausible excluded",
			results: []growth.Result{
				res(growth.WeightForAge, 7), res(growth.HeightForAge, 0.2),
			},
			verdict: classify.Normal, driver: growth.HeightForAge, recheck: true,
		},
		{
			msg: "nothing plausible",
			results: []growth.Result{
				res(growth.WeightForAge, 7), res(growth.WeightForHeight, -6),
			},
			verdict: classify.Recheck, driver: growth.UnknownMetric, recheck: true,
		},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			st := c.Classify(v.results, v.muac)
			assert.Equal(t, v.verdict, st.Verdict)
			assert.Equal(t, v.driver, st.DrivingMetric)
			assert.Equal(t, v.referral, st.RequiresReferral)
			assert.Equal(t, v.recheck, st.RequiresRecheck)
			assert.Len(t, st.Findings, len(v.results))
		})
	}
}

func TestClassifyPure(t *testing.T) {
	c := classify.New()
	in := []growth.Result{
		res(growth.WeightForAge, -2.2), res(growth.WeightForHeight, -1.1),
	}
	muac := ptr(12.2)
	first := c.Classify(in, muac)
	for range 10 {
		assert.Equal(t, first, c.Classify(in, muac))
	}

	*muac = 10
	assert.Equal(t, 12.2, *first.MUACCm)
}

func TestFindingLabels(t *testing.T) {
	st := classify.New().Classify([]growth.Result{
		res(growth.WeightForAge, -3.2),
		res(growth.HeightForAge, -2.5),
		res(growth.WeightForHeight, 2.5),
		res(growth.MUACForAge, 2.5),
		res(growth.BMIForAge, -5.5),
	}, nil)

	labels := map[growth.Metric]string{}
	for _, f := range st.Findings {
		labels[f.Metric] = f.Label
	}
	assert.Equal(t, "severely underweight", labels[growth.WeightForAge])
	assert.Equal(t, "moderately stunted", labels[growth.HeightForAge])
	assert.Equal(t, "overweight", labels[growth.WeightForHeight])
	assert.Equal(t, "normal", labels[growth.MUACForAge])
	assert.Equal(t, "implausible", labels[growth.BMIForAge])

	f, ok := st.Finding(growth.HeightForAge)
	assert.True(t, ok)
	assert.Equal(t, classify.BandModerate, f.Band)
}

func TestVerdictMappings(t *testing.T) {
	tests := []struct {
		v     classify.Verdict
		cat   classify.Category
		label string
	}{
		{classify.Normal, classify.Green, "Normal"},
		{classify.Overweight, classify.Yellow, "Berisiko"},
		{classify.Moderate, classify.Yellow, "Gizi Kurang"},
		{classify.Severe, classify.Red, "Gizi Buruk"},
		{classify.Recheck, classify.Grey, "Ukur Ulang"},
	}
	for _, v := range tests {
		assert.Equal(t, v.cat, v.v.Category(), v.v.String())
		assert.Equal(t, v.label, v.v.Label())
		assert.NotEmpty(t, v.v.Advice())
		assert.Equal(t, v.v, classify.ParseVerdict(v.v.String()))
	}
	assert.Less(t, classify.Normal.Severity(), classify.Overweight.Severity())
	assert.Less(t, classify.Moderate.Severity(), classify.Severe.Severity())
}
