package growth

import (
	"fmt"
	"math"
	"slices"

	"github.com/gizisehat/gizi/pkg/child"
)

// LMS holds Box-Cox power (L), median (M) and coefficient of
// variation (S) of a reference distribution.
type LMS struct {
	L float64 `json:"l" yaml:"l"`
	M float64 `json:"m" yaml:"m"`
	S float64 `json:"s" yaml:"s"`
}

// Z converts an observed value into a z-score.
func (p LMS) Z(x float64) float64 {
	if p.L == 0 {
		return math.Log(x/p.M) / p.S
	}
	return (math.Pow(x/p.M, p.L) - 1) / (p.L * p.S)
}

// Value converts a z-score back into the observed scale.
func (p LMS) Value(z float64) float64 {
	if p.L == 0 {
		return p.M * math.Exp(p.S*z)
	}
	return p.M * math.Pow(1+p.L*p.S*z, 1/p.L)
}

// Node is a tabulated reference point. Index is age in months, or
// length/height in cm for weight-for-height.
type Node struct {
	Index float64 `json:"index" yaml:"index"`
	LMS   `yaml:",inline"`
}

// Table is a growth reference for one sex and one metric.
type Table struct {
	Metric Metric
	Sex    child.Sex
	// AgeMin and AgeMax are the ages (months) the table applies to.
	AgeMin, AgeMax float64
	// Nodes are sorted by Index in strictly ascending order.
	Nodes []Node
}

// Validate checks internal consistency of the table.
func (t Table) Validate() error {
	if t.Metric == UnknownMetric {
		return fmt.Errorf("table has unknown metric")
	}
	if t.Sex != child.Female && t.Sex != child.Male {
		return fmt.Errorf("%s table has unknown sex", t.Metric)
	}
	if len(t.Nodes) == 0 {
		return fmt.Errorf("%s/%s table has no nodes", t.Metric, t.Sex)
	}
	if t.AgeMin < 0 || t.AgeMax < t.AgeMin {
		return fmt.Errorf("%s/%s table has invalid age range %g-%g",
			t.Metric, t.Sex, t.AgeMin, t.AgeMax)
	}
	for i, n := range t.Nodes {
		if n.M <= 0 || n.S <= 0 {
			return fmt.Errorf("%s/%s node %g must have positive M and S",
				t.Metric, t.Sex, n.Index)
		}
		if i > 0 && n.Index <= t.Nodes[i-1].Index {
			return fmt.Errorf("%s/%s nodes are not strictly ascending at %g",
				t.Metric, t.Sex, n.Index)
		}
	}
	return nil
}

// IndexRange returns the first and last tabulated index.
func (t Table) IndexRange() (float64, float64) {
	return t.Nodes[0].Index, t.Nodes[len(t.Nodes)-1].Index
}

// CoversAge reports if the table applies to the given age.
func (t Table) CoversAge(ageMonths float64) bool {
	return ageMonths >= t.AgeMin && ageMonths <= t.AgeMax
}

// Lookup returns LMS parameters at index. Exact nodes are returned as is,
// otherwise parameters are linearly interpolated between the two
// bracketing nodes. The second value is false outside the tabulated range.
func (t Table) Lookup(index float64) (LMS, bool) {
	lo, hi := t.IndexRange()
	if math.IsNaN(index) || index < lo || index > hi {
		return LMS{}, false
	}
	i, found := slices.BinarySearchFunc(t.Nodes, index,
		func(n Node, idx float64) int {
			switch {
			case n.Index < idx:
				return -1
			case n.Index > idx:
				return 1
			default:
				return 0
			}
		})
	if found {
		return t.Nodes[i].LMS, true
	}
	a, b := t.Nodes[i-1], t.Nodes[i]
	f := (index - a.Index) / (b.Index - a.Index)
	return LMS{
		L: lerp(a.L, b.L, f),
		M: lerp(a.M, b.M, f),
		S: lerp(a.S, b.S, f),
	}, true
}

func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}

type tableKey struct {
	metric Metric
	sex    child.Sex
}

// Standards is the immutable set of growth reference tables.
type Standards struct {
	tables map[tableKey]Table
}

// NewStandards validates and copies tables into a read-only set.
func NewStandards(tables ...Table) (*Standards, error) {
	res := &Standards{tables: make(map[tableKey]Table, len(tables))}
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		k := tableKey{t.Metric, t.Sex}
		if _, ok := res.tables[k]; ok {
			return nil, fmt.Errorf("duplicate %s/%s table", t.Metric, t.Sex)
		}
		t.Nodes = slices.Clone(t.Nodes)
		res.tables[k] = t
	}
	return res, nil
}

// Table returns a copy of the table for the metric and sex.
func (s *Standards) Table(m Metric, sex child.Sex) (Table, bool) {
	t, ok := s.tables[tableKey{m, sex}]
	t.Nodes = slices.Clone(t.Nodes)
	return t, ok
}

// Len returns the number of tables.
func (s *Standards) Len() int {
	return len(s.tables)
}
