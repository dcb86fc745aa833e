package nutrient

import (
	"cmp"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gizisehat/gizi/pkg/child"
)

// Tracker keeps intake logs of children. Daily figures are always
// recomputed from the full log of the day.
type Tracker struct {
	cat     *Catalog
	targets *Targets
	plan    *MealPlan
	now     func() time.Time

	mu   sync.Mutex
	logs map[string]*intakeLog
}

type intakeLog struct {
	mu      sync.RWMutex
	entries []IntakeEntry
}

// Option configures a Tracker.
type Option func(*Tracker)

// OptClock replaces time.Now used for LoggedAt defaults.
func OptClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// OptMealPlan sets the feeding schedules used by MealPlan.
func OptMealPlan(p *MealPlan) Option {
	return func(t *Tracker) {
		t.plan = p
	}
}

// NewTracker creates a Tracker over read-only reference data.
func NewTracker(cat *Catalog, targets *Targets, opts ...Option) *Tracker {
	res := &Tracker{
		cat:     cat,
		targets: targets,
		now:     time.Now,
		logs:    make(map[string]*intakeLog),
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Catalog returns the food catalog.
func (t *Tracker) Catalog() *Catalog {
	return t.cat
}

func (t *Tracker) log(childID string, create bool) *intakeLog {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.logs[childID]
	if !ok && create {
		l = &intakeLog{}
		t.logs[childID] = l
	}
	return l
}

// Log validates and records an intake entry. commit, if not nil,
// persists the entry while the child's log is locked; the entry becomes
// visible only if commit succeeds.
func (t *Tracker) Log(
	c child.Child,
	e IntakeEntry,
	commit func(IntakeEntry) error,
) (IntakeEntry, error) {
	if e.ChildID == "" {
		e.ChildID = c.ID
	}
	if e.ChildID != c.ID {
		return IntakeEntry{}, ValidationError("child_id", e.ChildID, "id "+c.ID)
	}
	if err := e.Validate(t.cat); err != nil {
		return IntakeEntry{}, err
	}
	day, _ := ParseDate(e.Date)
	e.Date = DateOf(day)
	if day.Before(truncDay(c.BirthDate)) {
		return IntakeEntry{}, ValidationError("date", e.Date, "a day after birth")
	}
	if e.ID == "" {
		e.ID = newEntryID()
	}
	if e.LoggedAt.IsZero() {
		e.LoggedAt = t.now()
	}
	if e.Source == "" {
		e.Source = SourceManual
	}
	if e.AdHoc != nil {
		a := *e.AdHoc
		e.AdHoc = &a
	}

	l := t.log(c.ID, true)
	l.mu.Lock()
	defer l.mu.Unlock()
	if commit != nil {
		if err := commit(e); err != nil {
			return IntakeEntry{}, err
		}
	}
	l.entries = append(l.entries, e)
	slog.Debug("Intake logged", "child", c.ID, "date", e.Date, "food", e.FoodID)
	return e, nil
}

// Entries returns the entries of the child for a day in logging order.
func (t *Tracker) Entries(childID, date string) []IntakeEntry {
	l := t.log(childID, false)
	if l == nil {
		return nil
	}
	date = normDate(date)
	l.mu.RLock()
	defer l.mu.RUnlock()
	var res []IntakeEntry
	for _, e := range l.entries {
		if e.Date == date {
			res = append(res, e)
		}
	}
	return res
}

// Days returns the days with logged intake, newest first.
func (t *Tracker) Days(childID string) iter.Seq[string] {
	return func(yield func(string) bool) {
		l := t.log(childID, false)
		if l == nil {
			return
		}
		l.mu.RLock()
		days := make([]string, 0, len(l.entries))
		for _, e := range l.entries {
			days = append(days, e.Date)
		}
		l.mu.RUnlock()
		slices.SortFunc(days, func(a, b string) int { return cmp.Compare(b, a) })
		for _, d := range slices.Compact(days) {
			if !yield(d) {
				return
			}
		}
	}
}

// DailyProgress aggregates the day's log against the targets of the
// child's age on that day.
func (t *Tracker) DailyProgress(c child.Child, date string) (Progress, error) {
	day, err := ParseDate(date)
	if err != nil {
		return Progress{}, err
	}
	age, err := child.AgeInMonths(truncDay(c.BirthDate), day)
	if err != nil {
		return Progress{}, err
	}
	target, err := t.targets.For(age)
	if err != nil {
		return Progress{}, err
	}
	date = DateOf(day)
	entries := t.Entries(c.ID, date)
	return Progress{
		ChildID:   c.ID,
		Date:      date,
		AgeMonths: age,
		Entries:   len(entries),
		Items:     NewProgress(Aggregate(t.cat, entries), target),
	}, nil
}

// Recommend ranks eligible foods that close the day's deficit.
func (t *Tracker) Recommend(c child.Child, date string) ([]Recommendation, error) {
	p, err := t.DailyProgress(c, date)
	if err != nil {
		return nil, err
	}
	return Rank(t.cat.Eligible(p.AgeMonths), p.Deficit()), nil
}

// MealPlan returns the feeding schedule for the child's age on the day.
func (t *Tracker) MealPlan(c child.Child, date string) (DayPlan, error) {
	day, err := ParseDate(date)
	if err != nil {
		return DayPlan{}, err
	}
	age, err := child.AgeInMonths(truncDay(c.BirthDate), day)
	if err != nil {
		return DayPlan{}, err
	}
	band, err := t.plan.For(age)
	if err != nil {
		return DayPlan{}, err
	}
	return DayPlan{
		ChildID:   c.ID,
		Date:      DateOf(day),
		AgeMonths: age,
		Band:      band.Label(),
		Meals:     band.Meals,
	}, nil
}

// Restore replaces the child's log with persisted entries.
func (t *Tracker) Restore(childID string, entries []IntakeEntry) {
	l := &intakeLog{entries: slices.Clone(entries)}
	for i := range l.entries {
		l.entries[i].Date = normDate(l.entries[i].Date)
	}
	slices.SortStableFunc(l.entries, func(a, b IntakeEntry) int {
		return a.LoggedAt.Compare(b.LoggedAt)
	})
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs[childID] = l
}

// Loaded reports whether the child's log exists in the tracker.
func (t *Tracker) Loaded(childID string) bool {
	return t.log(childID, false) != nil
}

func truncDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
