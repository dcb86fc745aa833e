// Package growth converts anthropometric measurements into z-scores using
// LMS growth reference tables.
//
// This is a pure package: tables are constructed once and never mutated,
// so a Standards value and a Calculator are safe for concurrent use.
package growth

import (
	"strings"
)

// Metric is an anthropometric indicator with its own reference table.
type Metric int

const (
	UnknownMetric Metric = iota
	WeightForAge
	HeightForAge
	WeightForHeight
	BMIForAge
	MUACForAge
)

// Metrics lists all known indicators in declaration order.
var Metrics = []Metric{
	WeightForAge, HeightForAge, WeightForHeight, BMIForAge, MUACForAge,
}

// String returns the canonical name of the metric.
func (m Metric) String() string {
	switch m {
	case WeightForAge:
		return "weight-for-age"
	case HeightForAge:
		return "height-for-age"
	case WeightForHeight:
		return "weight-for-height"
	case BMIForAge:
		return "bmi-for-age"
	case MUACForAge:
		return "muac-for-age"
	default:
		return "unknown"
	}
}

// Abbr returns the abbreviation commonly used in growth reports.
func (m Metric) Abbr() string {
	switch m {
	case WeightForAge:
		return "WAZ"
	case HeightForAge:
		return "HAZ"
	case WeightForHeight:
		return "WHZ"
	case BMIForAge:
		return "BAZ"
	case MUACForAge:
		return "MUACZ"
	default:
		return "?"
	}
}

// ParseMetric converts a metric name or abbreviation into Metric.
func ParseMetric(s string) Metric {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Metrics {
		if s == m.String() || s == strings.ToLower(m.Abbr()) {
			return m
		}
	}
	switch s {
	case "length-for-age", "lfa", "hfa":
		return HeightForAge
	case "weight-for-length", "wfl", "wfh":
		return WeightForHeight
	case "wfa":
		return WeightForAge
	case "bfa":
		return BMIForAge
	case "acfa", "arm-circumference-for-age":
		return MUACForAge
	}
	return UnknownMetric
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(b []byte) error {
	*m = ParseMetric(string(b))
	return nil
}

// IndexedByHeight is true for metrics whose reference table is indexed
// by length/height instead of age.
func (m Metric) IndexedByHeight() bool {
	return m == WeightForHeight
}

// WeightBased is true for indicators derived from body mass or arm
// circumference.
func (m Metric) WeightBased() bool {
	return m != HeightForAge && m != UnknownMetric
}

// PlausibleBound is the absolute z-score above which a value is flagged
// as a probable measurement error.
func (m Metric) PlausibleBound() float64 {
	if m == HeightForAge {
		return 6
	}
	return 5
}
