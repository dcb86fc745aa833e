// Package assistant answers caregiver questions with deterministic,
// keyword-matched responses, personalised with the child's live data.
package assistant

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/facility"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/google/uuid"
)

// Role of a message author.
type Role string

const (
	Caregiver Role = "caregiver"
	Assistant Role = "assistant"
)

// Message is one chat turn. A session history is ordered by Seq and by
// Timestamp.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	IntentID  string    `json:"intent_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Input is either free text or a quick-reply intent ID.
type Input struct {
	Text       string
	QuickReply string
}

// LiveData gives the engine read access to the current state of the
// child the session is about.
type LiveData interface {
	ChildName() string
	DailyProgress() (nutrient.Progress, error)
	Recommendations() ([]nutrient.Recommendation, error)
	LatestEntry() (history.Entry, bool)
	NearestFacility(service string) (facility.Facility, bool)
	MealPlan() (nutrient.DayPlan, error)
}

// View is the data available to live templates.
type View struct {
	Name      string
	Progress  nutrient.Progress
	Energy    nutrient.NutrientProgress
	Protein   nutrient.NutrientProgress
	Iron      nutrient.NutrientProgress
	Zinc      nutrient.NutrientProgress
	Shortfall string
	// Suggestion is the best recommended food, may be empty.
	Suggestion string
	Entry      history.Entry
	Verdict    string
	Advice     string
	Age        string
	Facility   facility.Facility
	Plan       nutrient.DayPlan
}

// Engine resolves input into an assistant message. It keeps no state
// between calls.
type Engine struct {
	table *Table
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// OptClock replaces time.Now for message timestamps.
func OptClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine over a read-only intent table.
func New(table *Table, opts ...Option) *Engine {
	res := &Engine{table: table, now: time.Now}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Table returns the intent table.
func (e *Engine) Table() *Table {
	return e.table
}

// Resolve finds the intent for the input. Unmatched text resolves to the
// fallback intent.
func (e *Engine) Resolve(in Input) (Intent, error) {
	if in.QuickReply != "" {
		res, ok := e.table.Intent(in.QuickReply)
		if !ok {
			return Intent{}, ValidationError("quick_reply", in.QuickReply,
				"a known quick-reply")
		}
		return res, nil
	}
	res, _, err := e.table.Match(in.Text)
	if errcode.Is(err, errcode.UnknownIntent) {
		return e.table.Fallback(), nil
	}
	return res, err
}

// Greeting creates the first message of a session.
func (e *Engine) Greeting(sessionID string) Message {
	return e.message(sessionID, nil, Assistant, e.table.Greeting(), "")
}

// Caregiver creates the message that records the caregiver's turn. A
// quick-reply is recorded with its chip text.
func (e *Engine) Caregiver(sessionID string, hist []Message, in Input) (Message, error) {
	text := strings.TrimSpace(in.Text)
	if in.QuickReply != "" {
		it, ok := e.table.Intent(in.QuickReply)
		if !ok {
			return Message{}, ValidationError("quick_reply", in.QuickReply,
				"a known quick-reply")
		}
		text = it.QuickReply
	}
	return e.message(sessionID, hist, Caregiver, text, ""), nil
}

// Respond produces the assistant reply for the input. live may be nil.
// For the same input and the same live state the reply text and intent
// are always the same.
func (e *Engine) Respond(
	live LiveData,
	hist []Message,
	in Input,
) (Message, error) {
	it, err := e.Resolve(in)
	if err != nil {
		return Message{}, err
	}
	text, err := e.render(it, live)
	if err != nil {
		return Message{}, err
	}
	sessionID := ""
	if len(hist) > 0 {
		sessionID = hist[0].SessionID
	}
	return e.message(sessionID, hist, Assistant, text, it.ID), nil
}

func (e *Engine) render(it Intent, live LiveData) (string, error) {
	c := e.table.compiled(it.ID)
	var buf bytes.Buffer
	if c.live != nil && live != nil {
		if view, ok := collect(c.Intent, live); ok {
			err := c.live.Execute(&buf, view)
			if err == nil {
				return strings.TrimSpace(buf.String()), nil
			}
			slog.Debug("Live template failed", "intent", it.ID, "error", err)
			buf.Reset()
		}
	}
	if err := c.static.Execute(&buf, View{}); err != nil {
		return "", errors.Join(ValidationError("template", it.ID, "a renderable template"), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// collect gathers live data the intent needs. It is false when any
// need cannot be satisfied.
func collect(it Intent, live LiveData) (View, bool) {
	res := View{Name: live.ChildName()}
	for _, n := range it.Needs {
		switch n {
		case NeedProgress:
			p, err := live.DailyProgress()
			if err != nil {
				slog.Debug("No progress for live answer", "error", err)
				return View{}, false
			}
			res.Progress = p
			res.Energy = p.Get(nutrient.Energy)
			res.Protein = p.Get(nutrient.Protein)
			res.Iron = p.Get(nutrient.Iron)
			res.Zinc = p.Get(nutrient.Zinc)
			res.Shortfall = p.Shortfall()
			if recs, err := live.Recommendations(); err == nil && len(recs) > 0 {
				res.Suggestion = recs[0].Food.Name
			}
		case NeedStatus:
			e, ok := live.LatestEntry()
			if !ok {
				return View{}, false
			}
			res.Entry = e
			res.Verdict = e.Status.Verdict.Label()
			res.Advice = e.Status.Verdict.Advice()
			res.Age = child.AgeLabel(e.AgeMonths)
		case NeedFacility:
			f, ok := live.NearestFacility(it.Service)
			if !ok {
				return View{}, false
			}
			res.Facility = f
		case NeedPlan:
			p, err := live.MealPlan()
			if err != nil {
				slog.Debug("No meal plan for live answer", "error", err)
				return View{}, false
			}
			res.Plan = p
		}
	}
	return res, true
}

func (e *Engine) message(
	sessionID string,
	hist []Message,
	role Role,
	text, intentID string,
) Message {
	ts := e.now()
	seq := 1
	if n := len(hist); n > 0 {
		last := hist[n-1]
		seq = last.Seq + 1
		if !ts.After(last.Timestamp) {
			ts = last.Timestamp.Add(time.Nanosecond)
		}
	}
	return Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Seq:       seq,
		Role:      role,
		Text:      text,
		IntentID:  intentID,
		Timestamp: ts,
	}
}
