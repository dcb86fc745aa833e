package ioservice

import (
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/facility"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
)

// live exposes the current state of one child to assistant templates.
type live struct {
	s    *service
	c    child.Child
	date string
}

func (l live) ChildName() string {
	return l.c.Name
}

func (l live) DailyProgress() (nutrient.Progress, error) {
	return l.s.tracker.DailyProgress(l.c, l.date)
}

func (l live) Recommendations() ([]nutrient.Recommendation, error) {
	return l.s.tracker.Recommend(l.c, l.date)
}

func (l live) LatestEntry() (history.Entry, bool) {
	return l.s.store.Latest(l.c.ID)
}

func (l live) NearestFacility(service string) (facility.Facility, bool) {
	res := l.s.data.Facilities.Nearest(service, 1)
	if len(res) == 0 {
		return facility.Facility{}, false
	}
	return res[0], true
}

func (l live) MealPlan() (nutrient.DayPlan, error) {
	return l.s.tracker.MealPlan(l.c, l.date)
}
