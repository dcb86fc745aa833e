package growth

import (
	"math"

	"github.com/gizisehat/gizi/pkg/child"
)

// Result is a z-score of one metric.
type Result struct {
	Metric Metric `json:"metric"`
	// Index is the table position used: age in months, or height in cm
	// for weight-for-height.
	Index      float64 `json:"index"`
	Observed   float64 `json:"observed"`
	Z          float64 `json:"z"`
	Percentile float64 `json:"percentile"`
	// Implausible marks a z-score beyond the metric's plausibility bound.
	Implausible bool `json:"implausible"`
	LMS         LMS  `json:"lms"`
}

// Input is a single anthropometric observation of a child.
type Input struct {
	Sex       child.Sex
	AgeMonths float64
	WeightKg  float64
	HeightCm  float64
	// MUACCm is optional mid-upper-arm circumference.
	MUACCm *float64
}

// Calculator computes z-scores against Standards.
type Calculator struct {
	std *Standards
}

// NewCalculator creates a Calculator over read-only standards.
func NewCalculator(std *Standards) *Calculator {
	return &Calculator{std: std}
}

// Standards returns the reference tables used by the calculator.
func (c *Calculator) Standards() *Standards {
	return c.std
}

// ZScore computes the z-score of an observed value for an age-indexed
// metric.
func (c *Calculator) ZScore(
	m Metric,
	sex child.Sex,
	ageMonths, observed float64,
) (Result, error) {
	if m.IndexedByHeight() {
		return Result{}, ValidationError(
			"metric", m.String(), "an age-indexed metric",
		)
	}
	return c.compute(m, sex, ageMonths, ageMonths, observed)
}

// ZScoreForHeight computes weight-for-height z-score. Age is still
// checked against the age range of the table.
func (c *Calculator) ZScoreForHeight(
	sex child.Sex,
	ageMonths, heightCm, weightKg float64,
) (Result, error) {
	if err := checkPositive("height", heightCm); err != nil {
		return Result{}, err
	}
	return c.compute(WeightForHeight, sex, ageMonths, heightCm, weightKg)
}

func (c *Calculator) compute(
	m Metric,
	sex child.Sex,
	ageMonths, index, observed float64,
) (Result, error) {
	if err := checkPositive(m.String(), observed); err != nil {
		return Result{}, err
	}
	if math.IsNaN(ageMonths) || ageMonths < 0 {
		return Result{}, ValidationError("age", formatFloat(ageMonths),
			"a non-negative number of months")
	}

	t, ok := c.std.tables[tableKey{m, sex}]
	if !ok {
		return Result{}, ReferenceDataGapError(m, sex, ageMonths, 0, 0)
	}
	if !t.CoversAge(ageMonths) {
		return Result{}, ReferenceDataGapError(m, sex, ageMonths,
			t.AgeMin, t.AgeMax)
	}
	lms, ok := t.Lookup(index)
	if !ok {
		lo, hi := t.IndexRange()
		return Result{}, ReferenceDataGapError(m, sex, index, lo, hi)
	}

	z := lms.Z(observed)
	res := Result{
		Metric:      m,
		Index:       index,
		Observed:    observed,
		Z:           z,
		Percentile:  Percentile(z),
		Implausible: math.Abs(z) > m.PlausibleBound(),
		LMS:         lms,
	}
	return res, nil
}

// Assess computes z-scores of all metrics applicable to the input.
// Weight-for-age, height-for-age, weight-for-height and BMI-for-age are
// required: a gap in any of them fails the assessment. MUAC-for-age is
// added only when MUAC is given and its table covers the age.
func (c *Calculator) Assess(in Input) ([]Result, error) {
	if err := checkPositive("weight", in.WeightKg); err != nil {
		return nil, err
	}
	if err := checkPositive("height", in.HeightCm); err != nil {
		return nil, err
	}

	res := make([]Result, 0, len(Metrics))

	wfa, err := c.ZScore(WeightForAge, in.Sex, in.AgeMonths, in.WeightKg)
	if err != nil {
		return nil, err
	}
	res = append(res, wfa)

	hfa, err := c.ZScore(HeightForAge, in.Sex, in.AgeMonths, in.HeightCm)
	if err != nil {
		return nil, err
	}
	res = append(res, hfa)

	wfh, err := c.ZScoreForHeight(in.Sex, in.AgeMonths, in.HeightCm, in.WeightKg)
	if err != nil {
		return nil, err
	}
	res = append(res, wfh)

	bfa, err := c.ZScore(BMIForAge, in.Sex, in.AgeMonths, BMI(in.WeightKg, in.HeightCm))
	if err != nil {
		return nil, err
	}
	res = append(res, bfa)

	if in.MUACCm != nil {
		if err := checkPositive("muac", *in.MUACCm); err != nil {
			return nil, err
		}
		t, ok := c.std.tables[tableKey{MUACForAge, in.Sex}]
		if ok && t.CoversAge(in.AgeMonths) {
			muac, err := c.ZScore(MUACForAge, in.Sex, in.AgeMonths, *in.MUACCm)
			if err != nil {
				return nil, err
			}
			res = append(res, muac)
		}
	}

	return res, nil
}

// BMI returns body mass index from weight (kg) and height (cm).
func BMI(weightKg, heightCm float64) float64 {
	h := heightCm / 100
	return weightKg / (h * h)
}

// Percentile converts a z-score into a percentile (0-100) using the
// standard normal cumulative distribution.
func Percentile(z float64) float64 {
	return 50 * math.Erfc(-z/math.Sqrt2)
}

func checkPositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ValidationError(field, formatFloat(v), "a positive number")
	}
	return nil
}
