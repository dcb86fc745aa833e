package history

import (
	"time"

	"github.com/gizisehat/gizi/pkg/classify"
)

// Measurement is one anthropometric observation. It is never changed
// after it is recorded; a correction is a new Measurement that
// references the old one in Supersedes.
type Measurement struct {
	ID         string    `json:"id"`
	ChildID    string    `json:"child_id"`
	Timestamp  time.Time `json:"timestamp"`
	WeightKg   float64   `json:"weight_kg"`
	HeightCm   float64   `json:"height_cm"`
	MUACCm     *float64  `json:"muac_cm,omitempty"`
	Note       string    `json:"note,omitempty"`
	Supersedes string    `json:"supersedes,omitempty"`
	// Seq is the insertion sequence within the child's log.
	Seq int `json:"seq"`
}

// Velocity is the change rate against the preceding effective entry.
type Velocity struct {
	Months           float64  `json:"months"`
	WeightKgPerMonth float64  `json:"weight_kg_per_month"`
	HeightCmPerMonth float64  `json:"height_cm_per_month"`
	MUACCmPerMonth   *float64 `json:"muac_cm_per_month,omitempty"`
}

// Trend carries velocity and the early-warning flags.
type Trend struct {
	// Velocity is nil for the first effective entry.
	Velocity *Velocity `json:"velocity,omitempty"`
	// SlowGain is true when the weight velocity of this interval is below
	// the minimum gain of the age band.
	SlowGain bool `json:"slow_gain"`
	// Decelerating is true after two consecutive slow intervals.
	Decelerating bool `json:"decelerating"`
}

// Entry is a measurement together with everything derived from it.
type Entry struct {
	Measurement
	AgeMonths float64         `json:"age_months"`
	Status    classify.Status `json:"status"`
	Trend     Trend           `json:"trend"`
	// Superseded is set in history snapshots when a later correction
	// references this entry.
	Superseded bool `json:"superseded"`
}

// Record is the persisted form of an entry. Derived fields are kept for
// querying only and are recomputed on Restore.
type Record struct {
	Measurement
	AgeMonths float64          `json:"age_months"`
	Verdict   classify.Verdict `json:"verdict"`
}

// Record returns the persisted form of the entry.
func (e Entry) Record() Record {
	return Record{
		Measurement: e.Measurement,
		AgeMonths:   e.AgeMonths,
		Verdict:     e.Status.Verdict,
	}
}
