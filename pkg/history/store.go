// Package history keeps the append-only measurement log of every child
// and derives growth velocity and trend flags from it.
package history

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/classify"
	"github.com/gizisehat/gizi/pkg/growth"
	"github.com/google/uuid"
)

// Store owns the measurement logs. Writers of the same child are
// serialized, readers get snapshots.
type Store struct {
	calc  *growth.Calculator
	cls   classify.Classifier
	gains GainTable
	now   func() time.Time

	mu   sync.Mutex
	logs map[string]*childLog
}

type childLog struct {
	mu         sync.RWMutex
	child      child.Child
	entries    []Entry
	superseded map[string]bool
}

// Option configures a Store.
type Option func(*Store)

// OptClock replaces time.Now, used to reject future timestamps.
func OptClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty Store.
func New(
	calc *growth.Calculator,
	cls classify.Classifier,
	gains GainTable,
	opts ...Option,
) *Store {
	res := &Store{
		calc:  calc,
		cls:   cls,
		gains: gains,
		now:   time.Now,
		logs:  make(map[string]*childLog),
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func (s *Store) log(childID string) *childLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[childID]
	if !ok {
		l = &childLog{superseded: make(map[string]bool)}
		s.logs[childID] = l
	}
	return l
}

func (s *Store) find(childID string) (*childLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[childID]
	return l, ok
}

// Append classifies the measurement and adds it to the child's log.
// commit, if not nil, persists the new entry while the child is locked;
// when it fails nothing is published. Validation errors and reference
// gaps leave the log unchanged.
func (s *Store) Append(
	c child.Child,
	m Measurement,
	commit func(Entry) error,
) (Entry, error) {
	if err := c.Validate(); err != nil {
		return Entry{}, err
	}
	if m.ChildID == "" {
		m.ChildID = c.ID
	}
	if m.ChildID != c.ID {
		return Entry{}, ValidationError("child_id", m.ChildID, "id "+c.ID)
	}
	if m.Timestamp.After(s.now()) {
		return Entry{}, ValidationError(
			"timestamp", m.Timestamp.Format(time.RFC3339), "a moment in the past",
		)
	}

	l := s.log(c.ID)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.child.Version <= c.Version {
		l.child = c
	}
	e, err := s.derive(l, m)
	if err != nil {
		slog.Debug("Measurement rejected", "child", c.ID, "error", err)
		return Entry{}, err
	}
	if commit != nil {
		if err := commit(e); err != nil {
			return Entry{}, err
		}
	}
	l.publish(e)

	slog.Debug("Measurement appended",
		"child", c.ID,
		"seq", e.Seq,
		"verdict", e.Status.Verdict.String(),
	)
	return e, nil
}

// derive validates m against the log and computes its entry. The caller
// holds the write lock.
func (s *Store) derive(l *childLog, m Measurement) (Entry, error) {
	if err := checkValues(m); err != nil {
		return Entry{}, err
	}
	if n := len(l.entries); n > 0 {
		last := l.entries[n-1].Timestamp
		if !m.Timestamp.After(last) {
			return Entry{}, ValidationError(
				"timestamp", m.Timestamp.Format(time.RFC3339),
				"a moment after "+last.Format(time.RFC3339),
			)
		}
	}
	if m.Supersedes != "" {
		if !slices.ContainsFunc(l.entries, func(e Entry) bool {
			return e.ID == m.Supersedes
		}) {
			return Entry{}, ValidationError("supersedes", m.Supersedes,
				"an existing measurement of the child")
		}
		if l.superseded[m.Supersedes] {
			return Entry{}, ValidationError("supersedes", m.Supersedes,
				"a measurement that was not corrected yet")
		}
	}

	age, err := l.child.AgeInMonths(m.Timestamp)
	if err != nil {
		return Entry{}, err
	}
	results, err := s.calc.Assess(growth.Input{
		Sex:       l.child.Sex,
		AgeMonths: age,
		WeightKg:  m.WeightKg,
		HeightCm:  m.HeightCm,
		MUACCm:    m.MUACCm,
	})
	if err != nil {
		return Entry{}, err
	}

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Seq = len(l.entries) + 1

	res := Entry{
		Measurement: m,
		AgeMonths:   age,
		Status:      s.cls.Classify(results, m.MUACCm),
	}
	if prev, ok := l.previous(m.Supersedes); ok {
		res.Trend = s.trend(prev, res)
	}
	return res, nil
}

func checkValues(m Measurement) error {
	if m.Timestamp.IsZero() {
		return ValidationError("timestamp", "", "a moment in time")
	}
	vals := []struct {
		field string
		v     *float64
	}{
		{"weight", &m.WeightKg},
		{"height", &m.HeightCm},
		{"muac", m.MUACCm},
	}
	for _, v := range vals {
		if v.v == nil {
			continue
		}
		if math.IsNaN(*v.v) || math.IsInf(*v.v, 0) || *v.v <= 0 {
			return ValidationError(v.field, fmt.Sprint(*v.v), "a positive number")
		}
	}
	return nil
}

// previous returns the newest effective entry, ignoring the one that is
// about to be superseded.
func (l *childLog) previous(skip string) (Entry, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if l.superseded[e.ID] || e.ID == skip {
			continue
		}
		return e, true
	}
	return Entry{}, false
}

func (s *Store) trend(prev, cur Entry) Trend {
	months := cur.Timestamp.Sub(prev.Timestamp).Hours() / 24 / child.DaysPerMonth
	v := &Velocity{
		Months:           months,
		WeightKgPerMonth: (cur.WeightKg - prev.WeightKg) / months,
		HeightCmPerMonth: (cur.HeightCm - prev.HeightCm) / months,
	}
	if cur.MUACCm != nil && prev.MUACCm != nil {
		mv := (*cur.MUACCm - *prev.MUACCm) / months
		v.MUACCmPerMonth = &mv
	}

	res := Trend{Velocity: v}
	if minGain, ok := s.gains.MinGain(cur.AgeMonths); ok {
		res.SlowGain = v.WeightKgPerMonth < minGain
	}
	res.Decelerating = res.SlowGain && prev.Trend.SlowGain
	return res
}

func (l *childLog) publish(e Entry) {
	l.entries = append(l.entries, e)
	if e.Supersedes != "" {
		l.superseded[e.Supersedes] = true
	}
}

// History returns the child's entries oldest first. The sequence can be
// ranged over many times; every range works on its own snapshot.
func (s *Store) History(childID string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range s.snapshot(childID) {
			if !yield(e) {
				return
			}
		}
	}
}

func (s *Store) snapshot(childID string) []Entry {
	l, ok := s.find(childID)
	if !ok {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	res := slices.Clone(l.entries)
	for i := range res {
		res[i].Superseded = l.superseded[res[i].ID]
	}
	return res
}

// Len returns the number of entries of the child, superseded included.
func (s *Store) Len(childID string) int {
	l, ok := s.find(childID)
	if !ok {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Latest returns the newest entry that was not corrected.
func (s *Store) Latest(childID string) (Entry, bool) {
	l, ok := s.find(childID)
	if !ok {
		return Entry{}, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.previous("")
}

// Loaded reports whether the child's log exists in the store.
func (s *Store) Loaded(childID string) bool {
	_, ok := s.find(childID)
	return ok
}

// Restore rebuilds the child's log from persisted records, recomputing
// status and trend. On error the current log is kept.
func (s *Store) Restore(c child.Child, records []Record) error {
	if err := c.Validate(); err != nil {
		return err
	}
	recs := slices.Clone(records)
	slices.SortStableFunc(recs, func(a, b Record) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	fresh := &childLog{child: c, superseded: make(map[string]bool)}
	for _, r := range recs {
		e, err := s.derive(fresh, r.Measurement)
		if err != nil {
			return err
		}
		fresh.publish(e)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[c.ID] = fresh
	return nil
}
