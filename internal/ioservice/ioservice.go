// Package ioservice implements the exposed APIs on top of the pure
// assessment packages and a persistence repository.
//
// Children are hydrated from the repository on first touch. Writes of
// one child are serialized and persisted inside the atomic append of
// the in-memory log, so a failed write leaves no visible trace.
package ioservice

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gizisehat/gizi/internal/iophoto"
	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/classify"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/facility"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/growth"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/gizisehat/gizi/pkg/refdata"
	"github.com/google/uuid"
)

const defaultPhotoTimeout = 30 * time.Second

type service struct {
	repo         gizi.Repository
	photo        gizi.PhotoAnalyzer
	photoTimeout time.Duration
	data         *refdata.Data
	now          func() time.Time

	calc    *growth.Calculator
	store   *history.Store
	tracker *nutrient.Tracker
	engine  *assistant.Engine

	mu       sync.RWMutex
	children map[string]child.Child

	childLocks   *keyLocks
	sessionLocks *keyLocks
}

// Option configures the service.
type Option func(*service)

// OptClock replaces time.Now in every component.
func OptClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// OptPhotoAnalyzer sets the provider used by LogPhoto.
func OptPhotoAnalyzer(p gizi.PhotoAnalyzer) Option {
	return func(s *service) {
		s.photo = p
	}
}

// OptPhotoTimeout bounds a single photo analysis.
func OptPhotoTimeout(d time.Duration) Option {
	return func(s *service) {
		if d > 0 {
			s.photoTimeout = d
		}
	}
}

// New creates the engine over immutable reference data and a
// repository. The repository is closed by Close.
func New(data *refdata.Data, repo gizi.Repository, opts ...Option) gizi.Gizi {
	res := &service{
		repo:         repo,
		data:         data,
		photoTimeout: defaultPhotoTimeout,
		now:          time.Now,
		children:     make(map[string]child.Child),
		childLocks:   newKeyLocks(),
		sessionLocks: newKeyLocks(),
	}
	for _, opt := range opts {
		opt(res)
	}

	res.calc = growth.NewCalculator(data.Standards)
	res.store = history.New(
		res.calc,
		classify.New(),
		data.Gains,
		history.OptClock(res.now),
	)
	res.tracker = nutrient.NewTracker(
		data.Catalog, data.Targets,
		nutrient.OptClock(res.now),
		nutrient.OptMealPlan(data.MealPlan),
	)
	res.engine = assistant.New(data.Intents, assistant.OptClock(res.now))
	return res
}

func (s *service) Close() error {
	return s.repo.Close()
}

// hydrate returns the cached child, loading its profile, measurements
// and intake from the repository when needed. The caller holds the
// child's lock.
func (s *service) hydrate(ctx context.Context, id string) (child.Child, error) {
	s.mu.RLock()
	c, ok := s.children[id]
	s.mu.RUnlock()
	if ok {
		return c, nil
	}

	c, err := s.repo.Child(ctx, id)
	if err != nil {
		return child.Child{}, err
	}
	recs, err := s.repo.Measurements(ctx, id)
	if err != nil {
		return child.Child{}, err
	}
	intake, err := s.repo.Intake(ctx, id)
	if err != nil {
		return child.Child{}, err
	}
	if err = s.store.Restore(c, recs); err != nil {
		return child.Child{}, err
	}
	s.tracker.Restore(id, intake)

	s.mu.Lock()
	s.children[id] = c
	s.mu.Unlock()
	slog.Debug("Child hydrated",
		"child", id, "measurements", len(recs), "intake", len(intake))
	return c, nil
}

// acquire locks the child for writing and hydrates it.
func (s *service) acquire(ctx context.Context, id string) (child.Child, func(), error) {
	if strings.TrimSpace(id) == "" {
		return child.Child{}, nil, InvalidInputError("child_id", id, "non-empty id")
	}
	unlock := s.childLocks.lock(id)
	c, err := s.hydrate(ctx, id)
	if err != nil {
		unlock()
		return child.Child{}, nil, err
	}
	return c, unlock, nil
}

// snapshot hydrates the child for reading.
func (s *service) snapshot(ctx context.Context, id string) (child.Child, error) {
	c, unlock, err := s.acquire(ctx, id)
	if err != nil {
		return child.Child{}, err
	}
	unlock()
	return c, nil
}

func (s *service) AddChild(ctx context.Context, c child.Child) (child.Child, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Version == 0 {
		c.Version = 1
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return child.Child{}, err
	}
	if c.BirthDate.After(s.now()) {
		return child.Child{}, InvalidInputError(
			"birth_date", c.BirthDate.Format(time.DateOnly), "a date in the past",
		)
	}

	unlock := s.childLocks.lock(c.ID)
	defer unlock()

	_, err := s.repo.Child(ctx, c.ID)
	if err == nil {
		return child.Child{}, DuplicateChildError(c.ID)
	}
	if !errcode.Is(err, errcode.NotFoundError) {
		return child.Child{}, err
	}
	if err = ctx.Err(); err != nil {
		return child.Child{}, err
	}
	if err = s.repo.SaveChild(context.WithoutCancel(ctx), c); err != nil {
		return child.Child{}, err
	}
	if err = s.store.Restore(c, nil); err != nil {
		return child.Child{}, err
	}
	s.tracker.Restore(c.ID, nil)
	s.mu.Lock()
	s.children[c.ID] = c
	s.mu.Unlock()

	slog.Info("Child registered", "child", c.ID, "sex", c.Sex.String())
	return c, nil
}

func (s *service) CorrectChild(
	ctx context.Context,
	id string,
	fix gizi.ChildCorrection,
) (child.Child, error) {
	c, unlock, err := s.acquire(ctx, id)
	if err != nil {
		return child.Child{}, err
	}
	defer unlock()

	next := c.Correct(strings.TrimSpace(fix.Name), fix.Sex, fix.BirthDate, s.now())
	if err = next.Validate(); err != nil {
		return child.Child{}, err
	}
	if next.BirthDate.After(s.now()) {
		return child.Child{}, InvalidInputError(
			"birth_date", next.BirthDate.Format(time.DateOnly), "a date in the past",
		)
	}
	recs, err := s.repo.Measurements(ctx, id)
	if err != nil {
		return child.Child{}, err
	}
	// statuses depend on sex and age, re-derive them before saving
	if err = s.store.Restore(next, recs); err != nil {
		return child.Child{}, err
	}
	if err = ctx.Err(); err == nil {
		err = s.repo.SaveChild(context.WithoutCancel(ctx), next)
	}
	if err != nil {
		if rerr := s.store.Restore(c, recs); rerr != nil {
			slog.Error("Cannot roll back child correction", "child", id, "error", rerr)
		}
		return child.Child{}, err
	}
	s.mu.Lock()
	s.children[id] = next
	s.mu.Unlock()

	slog.Info("Child corrected", "child", id, "version", next.Version)
	return next, nil
}

func (s *service) Child(ctx context.Context, id string) (child.Child, error) {
	return s.snapshot(ctx, id)
}

func (s *service) Children(ctx context.Context) ([]child.Child, error) {
	return s.repo.Children(ctx)
}

func (s *service) SubmitMeasurement(
	ctx context.Context,
	childID string,
	m history.Measurement,
) (history.Entry, error) {
	c, unlock, err := s.acquire(ctx, childID)
	if err != nil {
		return history.Entry{}, err
	}
	defer unlock()
	if err = ctx.Err(); err != nil {
		return history.Entry{}, err
	}

	e, err := s.store.Append(c, m, func(e history.Entry) error {
		return s.repo.AppendMeasurement(context.WithoutCancel(ctx), e.Record())
	})
	if err != nil {
		slog.Info("Measurement rejected", "child", childID, "error", err)
		return history.Entry{}, err
	}
	if e.Status.RequiresRecheck {
		slog.Warn("Implausible measurement, recheck required",
			"child", childID, "measurement", e.ID)
	}
	slog.Info("Measurement accepted",
		"child", childID,
		"measurement", e.ID,
		"verdict", e.Status.Verdict.String(),
		"referral", e.Status.RequiresReferral,
	)
	return e, nil
}

func (s *service) History(ctx context.Context, childID string) (iter.Seq[history.Entry], error) {
	if _, err := s.snapshot(ctx, childID); err != nil {
		return nil, err
	}
	return s.store.History(childID), nil
}

func (s *service) GrowthChart(
	ctx context.Context,
	childID string,
	m growth.Metric,
) (gizi.GrowthChart, error) {
	if m == growth.UnknownMetric {
		return gizi.GrowthChart{}, growth.ValidationError("metric", m.String(), "a known metric")
	}
	c, err := s.snapshot(ctx, childID)
	if err != nil {
		return gizi.GrowthChart{}, err
	}
	curve, err := s.calc.Curve(m, c.Sex, 1)
	if err != nil {
		return gizi.GrowthChart{}, err
	}
	res := gizi.GrowthChart{ChildID: c.ID, Curve: curve, Points: []gizi.ChartPoint{}}
	for e := range s.store.History(c.ID) {
		if e.Superseded {
			continue
		}
		f, ok := e.Status.Finding(m)
		if !ok {
			continue
		}
		res.Points = append(res.Points, gizi.ChartPoint{
			Timestamp: e.Timestamp,
			Index:     f.Index,
			Value:     f.Observed,
			Z:         f.Z,
		})
	}
	return res, nil
}

func (s *service) LogIntake(
	ctx context.Context,
	childID string,
	e nutrient.IntakeEntry,
) (nutrient.IntakeEntry, error) {
	c, unlock, err := s.acquire(ctx, childID)
	if err != nil {
		return nutrient.IntakeEntry{}, err
	}
	defer unlock()
	if err = ctx.Err(); err != nil {
		return nutrient.IntakeEntry{}, err
	}

	res, err := s.tracker.Log(c, e, func(e nutrient.IntakeEntry) error {
		return s.repo.AppendIntake(context.WithoutCancel(ctx), e)
	})
	if err != nil {
		return nutrient.IntakeEntry{}, err
	}
	slog.Info("Intake logged",
		"child", childID,
		"date", res.Date,
		"food", res.FoodID,
		"source", string(res.Source),
	)
	return res, nil
}

func (s *service) LogPhoto(
	ctx context.Context,
	childID, date string,
	p gizi.Photo,
) (nutrient.IntakeEntry, error) {
	if _, err := nutrient.ParseDate(date); err != nil {
		return nutrient.IntakeEntry{}, err
	}
	if _, err := s.snapshot(ctx, childID); err != nil {
		return nutrient.IntakeEntry{}, err
	}
	if s.photo == nil {
		return nutrient.IntakeEntry{}, gizi.ExternalServiceError(iophoto.ServiceName, errNoAnalyzer)
	}

	actx, cancel := context.WithTimeout(ctx, s.photoTimeout)
	est, err := s.photo.Analyze(actx, p)
	cancel()
	if err != nil {
		slog.Warn("Photo analysis failed", "child", childID, "error", err)
		switch errcode.CodeOf(err) {
		case errcode.ExternalServiceFailure, errcode.ValidationError:
			return nutrient.IntakeEntry{}, err
		}
		return nutrient.IntakeEntry{}, gizi.ExternalServiceError(iophoto.ServiceName, err)
	}

	e, err := s.photoEntry(childID, date, est)
	if err != nil {
		slog.Warn("Photo estimate unusable", "child", childID, "food", est.Food)
		return nutrient.IntakeEntry{}, err
	}
	return s.LogIntake(ctx, childID, e)
}

// photoEntry turns an estimate into an intake entry. A known catalog
// food is logged by reference, anything else with the estimated
// nutrients of the whole portion.
func (s *service) photoEntry(
	childID, date string,
	est gizi.PhotoEstimate,
) (nutrient.IntakeEntry, error) {
	res := nutrient.IntakeEntry{
		ChildID:     childID,
		Date:        date,
		Description: est.Food,
		Portion:     1,
		Source:      nutrient.SourcePhoto,
	}
	if est.FoodID != "" {
		if item, ok := s.data.Catalog.Lookup(est.FoodID); ok {
			res.FoodID = item.ID
			if est.Portion > 0 {
				res.Portion = est.Portion
			}
			return res, nil
		}
	}
	if est.Nutrients == nil || est.Nutrients.IsZero() {
		return nutrient.IntakeEntry{}, gizi.ExternalServiceError(iophoto.ServiceName, errNoFood)
	}
	a := *est.Nutrients
	res.AdHoc = &a
	return res, nil
}

func (s *service) DailyProgress(
	ctx context.Context,
	childID, date string,
) (nutrient.Progress, error) {
	c, err := s.snapshot(ctx, childID)
	if err != nil {
		return nutrient.Progress{}, err
	}
	return s.tracker.DailyProgress(c, date)
}

func (s *service) Recommendations(
	ctx context.Context,
	childID, date string,
) ([]nutrient.Recommendation, error) {
	c, err := s.snapshot(ctx, childID)
	if err != nil {
		return nil, err
	}
	return s.tracker.Recommend(c, date)
}

func (s *service) MealPlan(
	ctx context.Context,
	childID, date string,
) (nutrient.DayPlan, error) {
	c, err := s.snapshot(ctx, childID)
	if err != nil {
		return nutrient.DayPlan{}, err
	}
	return s.tracker.MealPlan(c, date)
}

func (s *service) StartSession(
	ctx context.Context,
	childID string,
) (gizi.Session, []assistant.Message, error) {
	if _, err := s.snapshot(ctx, childID); err != nil {
		return gizi.Session{}, nil, err
	}
	if err := ctx.Err(); err != nil {
		return gizi.Session{}, nil, err
	}
	sess := gizi.Session{
		ID:        uuid.NewString(),
		ChildID:   childID,
		CreatedAt: s.now(),
	}
	greet := s.engine.Greeting(sess.ID)

	wctx := context.WithoutCancel(ctx)
	if err := s.repo.SaveSession(wctx, sess); err != nil {
		return gizi.Session{}, nil, err
	}
	if err := s.repo.AppendMessage(wctx, greet); err != nil {
		return gizi.Session{}, nil, err
	}
	slog.Info("Assistant session started", "session", sess.ID, "child", childID)
	return sess, []assistant.Message{greet}, nil
}

func (s *service) SendMessage(
	ctx context.Context,
	sessionID, text string,
) (assistant.Message, error) {
	return s.respond(ctx, sessionID, assistant.Input{Text: text})
}

func (s *service) SelectQuickReply(
	ctx context.Context,
	sessionID, intentID string,
) (assistant.Message, error) {
	if intentID == "" {
		return assistant.Message{}, InvalidInputError("quick_reply", intentID, "an intent id")
	}
	return s.respond(ctx, sessionID, assistant.Input{QuickReply: intentID})
}

// respond records the caregiver turn and the assistant reply. Turns of
// one session are serialized so sequence numbers stay unique.
func (s *service) respond(
	ctx context.Context,
	sessionID string,
	in assistant.Input,
) (assistant.Message, error) {
	unlock := s.sessionLocks.lock(sessionID)
	defer unlock()

	sess, err := s.repo.Session(ctx, sessionID)
	if err != nil {
		return assistant.Message{}, err
	}
	hist, err := s.repo.Messages(ctx, sessionID)
	if err != nil {
		return assistant.Message{}, err
	}
	c, err := s.snapshot(ctx, sess.ChildID)
	if err != nil {
		return assistant.Message{}, err
	}

	turn, err := s.engine.Caregiver(sessionID, hist, in)
	if err != nil {
		return assistant.Message{}, err
	}
	hist = append(hist, turn)
	lv := live{s: s, c: c, date: nutrient.DateOf(s.now())}
	reply, err := s.engine.Respond(lv, hist, in)
	if err != nil {
		return assistant.Message{}, err
	}
	if err = ctx.Err(); err != nil {
		return assistant.Message{}, err
	}

	wctx := context.WithoutCancel(ctx)
	if err = s.repo.AppendMessage(wctx, turn); err != nil {
		return assistant.Message{}, err
	}
	if err = s.repo.AppendMessage(wctx, reply); err != nil {
		return assistant.Message{}, err
	}
	slog.Info("Assistant replied", "session", sessionID, "intent", reply.IntentID)
	return reply, nil
}

func (s *service) Session(ctx context.Context, sessionID string) ([]assistant.Message, error) {
	if _, err := s.repo.Session(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.Messages(ctx, sessionID)
}

func (s *service) QuickReplies() []assistant.QuickReply {
	return s.data.Intents.QuickReplies()
}

func (s *service) Facilities(service string, n int) []facility.Facility {
	return s.data.Facilities.Nearest(service, n)
}
