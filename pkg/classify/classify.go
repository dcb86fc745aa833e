// Package classify turns z-scores and arm circumference into a
// nutritional status verdict.
package classify

import (
	"github.com/gizisehat/gizi/pkg/growth"
)

const (
	// DefaultMUACSevere is the MUAC (cm) below which a child is screened
	// as severely malnourished.
	DefaultMUACSevere = 11.5
	// DefaultMUACModerate is the upper bound (cm, exclusive) of the
	// moderate acute malnutrition band.
	DefaultMUACModerate = 12.5
)

// Band is the z-score band of one metric.
type Band int

const (
	BandNormal Band = iota
	BandHigh
	BandModerate
	BandSevere
)

func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandModerate:
		return "moderate"
	case BandSevere:
		return "severe"
	default:
		return "normal"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Finding is the classification of one metric.
type Finding struct {
	growth.Result
	Band  Band   `json:"band"`
	Label string `json:"label"`
}

// Status is the derived nutritional status of one measurement.
type Status struct {
	Verdict Verdict `json:"verdict"`
	// DrivingMetric is the metric that determined the verdict. It is
	// MUACForAge when the MUAC screening cut-offs decided it and
	// UnknownMetric for Recheck.
	DrivingMetric    growth.Metric `json:"driving_metric"`
	Findings         []Finding     `json:"findings"`
	MUACCm           *float64      `json:"muac_cm,omitempty"`
	MUACOverride     bool          `json:"muac_override"`
	RequiresReferral bool          `json:"requires_referral"`
	RequiresRecheck  bool          `json:"requires_recheck"`
}

// Finding returns the finding of a metric, if present.
func (s Status) Finding(m growth.Metric) (Finding, bool) {
	for _, f := range s.Findings {
		if f.Metric == m {
			return f, true
		}
	}
	return Finding{}, false
}

// Classifier holds MUAC screening cut-offs. The zero value is not
// usable, use New.
type Classifier struct {
	muacSevere   float64
	muacModerate float64
}

// New creates a Classifier with WHO MUAC cut-offs.
func New() Classifier {
	return Classifier{
		muacSevere:   DefaultMUACSevere,
		muacModerate: DefaultMUACModerate,
	}
}

// Classify is a pure function of its arguments. Implausible results are
// kept in Findings but do not take part in the verdict.
func (c Classifier) Classify(results []growth.Result, muacCm *float64) Status {
	res := Status{
		Verdict:  Recheck,
		Findings: make([]Finding, 0, len(results)),
	}

	var driver *Finding
	for _, r := range results {
		f := Finding{Result: r, Band: band(r), Label: label(r)}
		res.Findings = append(res.Findings, f)
		if r.Implausible {
			res.RequiresRecheck = true
			continue
		}
		if driver == nil || outranks(f, *driver) {
			driver = &f
		}
	}

	if driver != nil {
		res.Verdict = bandVerdict(driver.Band)
		res.DrivingMetric = driver.Metric
	}

	if muacCm != nil {
		v := *muacCm
		res.MUACCm = &v
		switch {
		case v < c.muacSevere:
			res.Verdict = Severe
			res.DrivingMetric = growth.MUACForAge
			res.MUACOverride = true
		case v < c.muacModerate && res.Verdict.Severity() < Moderate.Severity():
			res.Verdict = Moderate
			res.DrivingMetric = growth.MUACForAge
		}
	}

	res.RequiresReferral = res.Verdict == Severe || res.MUACOverride
	return res
}

func band(r growth.Result) Band {
	switch {
	case r.Z < -3:
		return BandSevere
	case r.Z < -2:
		return BandModerate
	case r.Z > 2 && hasHighBand(r.Metric):
		return BandHigh
	default:
		return BandNormal
	}
}

// hasHighBand is false for metrics without a clinically meaningful high
// category.
func hasHighBand(m growth.Metric) bool {
	switch m {
	case growth.WeightForAge, growth.WeightForHeight, growth.BMIForAge:
		return true
	default:
		return false
	}
}

func label(r growth.Result) string {
	if r.Implausible {
		return "implausible"
	}
	b := band(r)
	switch b {
	case BandNormal:
		return "normal"
	case BandHigh:
		return "overweight"
	}
	var low string
	switch r.Metric {
	case growth.WeightForAge:
		low = "underweight"
	case growth.HeightForAge:
		low = "stunted"
	default:
		low = "wasted"
	}
	if b == BandSevere {
		return "severely " + low
	}
	return "moderately " + low
}

func bandVerdict(b Band) Verdict {
	switch b {
	case BandSevere:
		return Severe
	case BandModerate:
		return Moderate
	case BandHigh:
		return Overweight
	default:
		return Normal
	}
}

// acuteRank orders metrics for the driving metric at equal severity,
// acute indicators first.
func acuteRank(m growth.Metric) int {
	switch m {
	case growth.WeightForHeight:
		return 0
	case growth.BMIForAge:
		return 1
	case growth.MUACForAge:
		return 2
	case growth.WeightForAge:
		return 3
	case growth.HeightForAge:
		return 4
	default:
		return 5
	}
}

func outranks(a, b Finding) bool {
	sa, sb := bandVerdict(a.Band).Severity(), bandVerdict(b.Band).Severity()
	if sa != sb {
		return sa > sb
	}
	return acuteRank(a.Metric) < acuteRank(b.Metric)
}
