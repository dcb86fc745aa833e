package history_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/classify"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/growth"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/refdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now  = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sari = child.Child{
		ID:        "sari",
		Name:      "Sari",
		Sex:       child.Female,
		BirthDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Version:   1,
	}
)

func store(t *testing.T) *history.Store {
	t.Helper()
	data, err := refdata.Default()
	require.NoError(t, err)
	return history.New(
		growth.NewCalculator(data.Standards),
		classify.New(),
		data.Gains,
		history.OptClock(func() time.Time { return now }),
	)
}

func day(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 9, 0, 0, 0, time.UTC)
}

func ptr(f float64) *float64 { return &f }

func TestAppendNormal(t *testing.T) {
	s := store(t)
	e, err := s.Append(sari, history.Measurement{
		Timestamp: day(9, 1), WeightKg: 8, HeightCm: 70, MUACCm: ptr(13.5),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, classify.Normal, e.Status.Verdict)
	assert.False(t, e.Status.RequiresReferral)
	assert.Len(t, e.Status.Findings, 5)
	assert.InDelta(t, 7.98, e.AgeMonths, 0.01)
	assert.Equal(t, 1, e.Seq)
	assert.Equal(t, "sari", e.ChildID)
	assert.NotEmpty(t, e.ID)
	assert.Nil(t, e.Trend.Velocity)

	wfa, ok := e.Status.Finding(growth.WeightForAge)
	require.True(t, ok)
	assert.InDelta(t, 0.06, wfa.Z, 0.03)
}

func TestAppendMUACOverride(t *testing.T) {
	s := store(t)
	e, err := s.Append(sari, history.Measurement{
		Timestamp: day(9, 1), WeightKg: 8, HeightCm: 70, MUACCm: ptr(11.0),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, classify.Severe, e.Status.Verdict)
	assert.Equal(t, growth.MUACForAge, e.Status.DrivingMetric)
	assert.True(t, e.Status.RequiresReferral)
}

func TestAppendRejects(t *testing.T) {
	s := store(t)
	_, err := s.Append(sari, history.Measurement{
		Timestamp: day(9, 1), WeightKg: 8, HeightCm: 70,
	}, nil)
	require.NoError(t, err)

	tests := []struct {
		msg  string
		m    history.Measurement
		code any
	}{
		{"same timestamp", history.Measurement{Timestamp: day(9, 1), WeightKg: 8.1, HeightCm: 70}, errcode.ValidationError},
		{"earlier timestamp", history.Measurement{Timestamp: day(8, 1), WeightKg: 7.8, HeightCm: 69}, errcode.ValidationError},
		{"future", history.Measurement{Timestamp: now.Add(time.Hour), WeightKg: 8.1, HeightCm: 70}, errcode.ValidationError},
		{"zero weight", history.Measurement{Timestamp: day(9, 2), HeightCm: 70}, errcode.ValidationError},
		{"negative muac", history.Measurement{Timestamp: day(9, 2), WeightKg: 8, HeightCm: 70, MUACCm: ptr(-1)}, errcode.ValidationError},
		{"no timestamp", history.Measurement{WeightKg: 8, HeightCm: 70}, errcode.ValidationError},
		{"unknown correction", history.Measurement{Timestamp: day(9, 2), WeightKg: 8, HeightCm: 70, Supersedes: "nope"}, errcode.ValidationError},
		{"other child", history.Measurement{ChildID: "budi", Timestamp: day(9, 2), WeightKg: 8, HeightCm: 70}, errcode.ValidationError},
	}
	for _, v := range tests {
		_, err := s.Append(sari, v.m, nil)
		require.Error(t, err, v.msg)
		assert.EqualValues(t, v.code, errcode.CodeOf(err), v.msg)
	}
	assert.Equal(t, 1, s.Len(sari.ID))
}

func TestAppendReferenceGap(t *testing.T) {
	s := store(t)
	old := child.Child{
		ID: "budi", Sex: child.Male, Version: 1,
		BirthDate: time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := s.Append(old, history.Measurement{
		Timestamp: day(6, 1), WeightKg: 20, HeightCm: 115,
	}, nil)
	assert.True(t, errcode.Is(err, errcode.ReferenceDataGap))
	assert.Equal(t, 0, s.Len(old.ID))
	_, ok := s.Latest(old.ID)
	assert.False(t, ok)
}

func TestVelocityAndDeceleration(t *testing.T) {
	s := store(t)
	ms := []history.Measurement{
		{Timestamp: day(8, 1), WeightKg: 7.6, HeightCm: 67, MUACCm: ptr(13.4)},
		{Timestamp: day(9, 1), WeightKg: 7.65, HeightCm: 67.8, MUACCm: ptr(13.5)},
		{Timestamp: day(10, 1), WeightKg: 7.7, HeightCm: 68.6},
	}
	var entries []history.Entry
	for _, m := range ms {
		e, err := s.Append(sari, m, nil)
		require.NoError(t, err)
		entries = append(entries, e)
	}

	assert.Nil(t, entries[0].Trend.Velocity)

	v := entries[1].Trend.Velocity
	require.NotNil(t, v)
	assert.InDelta(t, 31/child.DaysPerMonth, v.Months, 1e-9)
	assert.InDelta(t, 0.05/v.Months, v.WeightKgPerMonth, 1e-9)
	assert.InDelta(t, 0.8/v.Months, v.HeightCmPerMonth, 1e-9)
	require.NotNil(t, v.MUACCmPerMonth)
	assert.True(t, entries[1].Trend.SlowGain)
	assert.False(t, entries[1].Trend.Decelerating)

	assert.Nil(t, entries[2].Trend.Velocity.MUACCmPerMonth)
	assert.True(t, entries[2].Trend.SlowGain)
	assert.True(t, entries[2].Trend.Decelerating)
}

func TestGoodGainIsNotSlow(t *testing.T) {
	s := store(t)
	_, err := s.Append(sari, history.Measurement{Timestamp: day(8, 1), WeightKg: 7.6, HeightCm: 67}, nil)
	require.NoError(t, err)
	e, err := s.Append(sari, history.Measurement{Timestamp: day(9, 1), WeightKg: 8.0, HeightCm: 68}, nil)
	require.NoError(t, err)
	assert.False(t, e.Trend.SlowGain)
	assert.False(t, e.Trend.Decelerating)
}

func TestCorrections(t *testing.T) {
	s := store(t)
	first, err := s.Append(sari, history.Measurement{Timestamp: day(8, 1), WeightKg: 7.6, HeightCm: 67}, nil)
	require.NoError(t, err)
	wrong, err := s.Append(sari, history.Measurement{Timestamp: day(9, 1), WeightKg: 80, HeightCm: 68}, nil)
	require.NoError(t, err)
	assert.True(t, wrong.Status.RequiresRecheck)

	fixed, err := s.Append(sari, history.Measurement{
		Timestamp: day(9, 2), WeightKg: 8.0, HeightCm: 68, Supersedes: wrong.ID,
		Note: "salah ketik",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, fixed.Trend.Velocity)
	// velocity is measured against the entry before the corrected one
	assert.InDelta(t, 32/child.DaysPerMonth, fixed.Trend.Velocity.Months, 1e-9)

	_, err = s.Append(sari, history.Measurement{
		Timestamp: day(9, 3), WeightKg: 8.0, HeightCm: 68, Supersedes: wrong.ID,
	}, nil)
	assert.True(t, errcode.Is(err, errcode.ValidationError))

	var superseded []bool
	for e := range s.History(sari.ID) {
		superseded = append(superseded, e.Superseded)
	}
	assert.Equal(t, []bool{false, true, false}, superseded)

	latest, ok := s.Latest(sari.ID)
	require.True(t, ok)
	assert.Equal(t, fixed.ID, latest.ID)
	assert.NotEqual(t, first.ID, latest.ID)
}

func TestCommit(t *testing.T) {
	s := store(t)
	boom := errors.New("db down")
	_, err := s.Append(sari, history.Measurement{Timestamp: day(9, 1), WeightKg: 8, HeightCm: 70},
		func(history.Entry) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len(sari.ID))

	var rec history.Record
	e, err := s.Append(sari, history.Measurement{Timestamp: day(9, 1), WeightKg: 8, HeightCm: 70},
		func(e history.Entry) error {
			rec = e.Record()
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, e.ID, rec.ID)
	assert.Equal(t, classify.Normal, rec.Verdict)
	assert.Equal(t, 1, s.Len(sari.ID))
}

func TestHistorySequence(t *testing.T) {
	s := store(t)
	for i := range 5 {
		_, err := s.Append(sari, history.Measurement{
			Timestamp: day(5, 1+i*7), WeightKg: 7 + float64(i)*0.1, HeightCm: 65 + float64(i)*0.3,
		}, nil)
		require.NoError(t, err)
	}
	seq := s.History(sari.ID)

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	assert.Equal(t, 5, count())

	// a new entry is visible to a later range of the same sequence
	_, err := s.Append(sari, history.Measurement{Timestamp: day(7, 1), WeightKg: 7.8, HeightCm: 67}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, count())

	var prev time.Time
	for e := range seq {
		assert.True(t, e.Timestamp.After(prev))
		prev = e.Timestamp
	}

	n := 0
	for range seq {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)

	assert.Empty(t, collect(s.History("nobody")))
}

func collect(seq func(func(history.Entry) bool)) []history.Entry {
	var res []history.Entry
	for e := range seq {
		res = append(res, e)
	}
	return res
}

func TestRestore(t *testing.T) {
	s := store(t)
	var recs []history.Record
	for _, m := range []history.Measurement{
		{ID: "m2", Timestamp: day(9, 1), WeightKg: 7.65, HeightCm: 67.8},
		{ID: "m1", Timestamp: day(8, 1), WeightKg: 7.6, HeightCm: 67},
		{ID: "m3", Timestamp: day(10, 1), WeightKg: 7.7, HeightCm: 68.6},
	} {
		recs = append(recs, history.Record{Measurement: m})
	}
	require.NoError(t, s.Restore(sari, recs))
	assert.True(t, s.Loaded(sari.ID))

	entries := collect(s.History(sari.ID))
	require.Len(t, entries, 3)
	assert.Equal(t, "m1", entries[0].ID)
	assert.True(t, entries[2].Trend.Decelerating)

	bad := append(recs, history.Record{Measurement: history.Measurement{
		ID: "m4", Timestamp: day(10, 1), WeightKg: 7.7, HeightCm: 68.6,
	}})
	assert.Error(t, s.Restore(sari, bad))
	assert.Equal(t, 3, s.Len(sari.ID))
}

func TestConcurrentChildren(t *testing.T) {
	s := store(t)
	var wg sync.WaitGroup
	for i := range 20 {
		c := sari
		c.ID = fmt.Sprintf("child-%d", i)
		wg.Go(func() {
			for j := range 10 {
				_, err := s.Append(c, history.Measurement{
					Timestamp: day(6, 1+j), WeightKg: 7.3, HeightCm: 66,
				}, nil)
				assert.NoError(t, err)
			}
		})
	}
	wg.Wait()
	for i := range 20 {
		assert.Equal(t, 10, s.Len(fmt.Sprintf("child-%d", i)))
	}
}

func TestGainTable(t *testing.T) {
	g := history.GainTable{
		{FromMonths: 0, ToMonths: 6, MinKgPerMonth: 0.5},
		{FromMonths: 6, ToMonths: 12, MinKgPerMonth: 0.2},
	}
	require.NoError(t, g.Validate())
	v, ok := g.MinGain(6)
	assert.True(t, ok)
	assert.Equal(t, 0.2, v)
	_, ok = g.MinGain(12)
	assert.True(t, ok)
	_, ok = g.MinGain(12.1)
	assert.False(t, ok)

	assert.Error(t, history.GainTable{{FromMonths: 3, ToMonths: 3}}.Validate())
	assert.Error(t, history.GainTable{
		{FromMonths: 0, ToMonths: 6}, {FromMonths: 5, ToMonths: 8},
	}.Validate())
}
