package iostore

import (
	"database/sql"

	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/classify"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/gizisehat/gizi/pkg/schema"
)

func childRow(c child.Child) schema.Child {
	return schema.Child{
		ID:        c.ID,
		Version:   c.Version,
		Name:      c.Name,
		Sex:       c.Sex.String(),
		BirthDate: c.BirthDate,
		CreatedAt: c.CreatedAt,
	}
}

func childOf(r schema.Child) child.Child {
	sex, _ := child.ParseSex(r.Sex)
	return child.Child{
		ID:        r.ID,
		Version:   r.Version,
		Name:      r.Name,
		Sex:       sex,
		BirthDate: r.BirthDate,
		CreatedAt: r.CreatedAt,
	}
}

func measurementRow(r history.Record) schema.Measurement {
	return schema.Measurement{
		ID:         r.ID,
		ChildID:    r.ChildID,
		Seq:        r.Seq,
		Timestamp:  r.Timestamp,
		WeightKg:   r.WeightKg,
		HeightCm:   r.HeightCm,
		MUACCm:     nullFloat(r.MUACCm),
		Note:       r.Note,
		Supersedes: r.Supersedes,
		AgeMonths:  r.AgeMonths,
		Verdict:    r.Verdict.String(),
	}
}

func recordOf(r schema.Measurement) history.Record {
	return history.Record{
		Measurement: history.Measurement{
			ID:         r.ID,
			ChildID:    r.ChildID,
			Seq:        r.Seq,
			Timestamp:  r.Timestamp,
			WeightKg:   r.WeightKg,
			HeightCm:   r.HeightCm,
			MUACCm:     floatPtr(r.MUACCm),
			Note:       r.Note,
			Supersedes: r.Supersedes,
		},
		AgeMonths: r.AgeMonths,
		Verdict:   classify.ParseVerdict(r.Verdict),
	}
}

func intakeRow(e nutrient.IntakeEntry) schema.IntakeEntry {
	res := schema.IntakeEntry{
		ID:          e.ID,
		ChildID:     e.ChildID,
		Date:        e.Date,
		FoodID:      e.FoodID,
		Description: e.Description,
		Portion:     e.Portion,
		LoggedAt:    e.LoggedAt,
		Source:      string(e.Source),
	}
	if a := e.AdHoc; a != nil {
		res.Energy = sql.NullFloat64{Float64: a.Get(nutrient.Energy), Valid: true}
		res.Protein = sql.NullFloat64{Float64: a.Get(nutrient.Protein), Valid: true}
		res.Iron = sql.NullFloat64{Float64: a.Get(nutrient.Iron), Valid: true}
		res.Zinc = sql.NullFloat64{Float64: a.Get(nutrient.Zinc), Valid: true}
	}
	return res
}

func intakeOf(r schema.IntakeEntry) nutrient.IntakeEntry {
	res := nutrient.IntakeEntry{
		ID:          r.ID,
		ChildID:     r.ChildID,
		Date:        r.Date,
		FoodID:      r.FoodID,
		Description: r.Description,
		Portion:     r.Portion,
		LoggedAt:    r.LoggedAt,
		Source:      nutrient.Source(r.Source),
	}
	if r.Energy.Valid {
		a := nutrient.NewAmounts(
			r.Energy.Float64, r.Protein.Float64, r.Iron.Float64, r.Zinc.Float64,
		)
		res.AdHoc = &a
	}
	return res
}

func sessionRow(s gizi.Session) schema.Session {
	return schema.Session{ID: s.ID, ChildID: s.ChildID, CreatedAt: s.CreatedAt}
}

func sessionOf(r schema.Session) gizi.Session {
	return gizi.Session{ID: r.ID, ChildID: r.ChildID, CreatedAt: r.CreatedAt}
}

func messageRow(m assistant.Message) schema.Message {
	return schema.Message{
		ID:        m.ID,
		SessionID: m.SessionID,
		Seq:       m.Seq,
		Role:      string(m.Role),
		Text:      m.Text,
		IntentID:  m.IntentID,
		Timestamp: m.Timestamp,
	}
}

func messageOf(r schema.Message) assistant.Message {
	return assistant.Message{
		ID:        r.ID,
		SessionID: r.SessionID,
		Seq:       r.Seq,
		Role:      assistant.Role(r.Role),
		Text:      r.Text,
		IntentID:  r.IntentID,
		Timestamp: r.Timestamp,
	}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
