// Package importdoc describes the YAML file used for bulk import of
// children with their measurements and intake logs.
//
// A minimal document:
//
//	children:
//	  - name: Sari
//	    sex: female
//	    birth_date: 2026-01-01
//	    measurements:
//	      - {timestamp: 2026-09-01T09:00:00Z, weight_kg: 8, height_cm: 70}
//	    intake:
//	      - {date: 2026-09-01, food_id: telur-rebus, portion: 1}
package importdoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/gnames/gnuuid"
	"gopkg.in/yaml.v3"
)

// Importer loads a document into the engine.
type Importer interface {
	Import(ctx context.Context, path string) (Summary, error)
}

// Summary reports the outcome of an import.
type Summary struct {
	Children      int `json:"children"`
	ChildrenAdded int `json:"children_added"`
	Measurements  int `json:"measurements"`
	Intake        int `json:"intake"`
	// Skipped counts records already present in storage.
	Skipped int `json:"skipped"`
	// Rejected counts records that failed validation.
	Rejected int           `json:"rejected"`
	Duration time.Duration `json:"duration"`
}

// Document is the root of an import file.
type Document struct {
	Children []ChildDoc `yaml:"children"`

	// Warnings holds non-fatal issues found by Validate.
	Warnings []Warning `yaml:"-"`
}

// Warning is a non-fatal problem of one child record.
type Warning struct {
	Child   string
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s %s", w.Child, w.Field, w.Message)
}

// ChildDoc is a child with its records. Empty ID is derived from name
// and birth date, so importing the same file twice refers to the same
// child.
type ChildDoc struct {
	ID           string           `yaml:"id"`
	Name         string           `yaml:"name"`
	Sex          string           `yaml:"sex"`
	BirthDate    string           `yaml:"birth_date"`
	Measurements []MeasurementDoc `yaml:"measurements"`
	Intake       []IntakeDoc      `yaml:"intake"`
}

// MeasurementDoc is one measurement.
type MeasurementDoc struct {
	Timestamp string   `yaml:"timestamp"`
	WeightKg  float64  `yaml:"weight_kg"`
	HeightCm  float64  `yaml:"height_cm"`
	MUACCm    *float64 `yaml:"muac_cm"`
	Note      string   `yaml:"note"`
}

// IntakeDoc is one intake entry, either a catalog food or ad-hoc
// nutrients.
type IntakeDoc struct {
	Date        string        `yaml:"date"`
	FoodID      string        `yaml:"food_id"`
	Portion     float64       `yaml:"portion"`
	Description string        `yaml:"description"`
	Nutrients   *NutrientsDoc `yaml:"nutrients"`
}

// NutrientsDoc lists nutrients of an ad-hoc food.
type NutrientsDoc struct {
	Energy  float64 `yaml:"energy"`
	Protein float64 `yaml:"protein"`
	Iron    float64 `yaml:"iron"`
	Zinc    float64 `yaml:"zinc"`
}

// timeLayouts are accepted for measurement timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Parse decodes an import document.
func Parse(source string, r io.Reader) (Document, error) {
	var res Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&res); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("document is empty")
		}
		return Document{}, ParseError(source, err)
	}
	return res, nil
}

// ParseBytes decodes an import document from memory.
func ParseBytes(source string, b []byte) (Document, error) {
	return Parse(source, bytes.NewReader(b))
}

// Validate checks that the document has children and that child IDs are
// unique. Problems of single records are collected as warnings, such
// records are rejected during import.
func (d *Document) Validate() error {
	if len(d.Children) == 0 {
		return errors.New("no children in the document")
	}
	d.Warnings = d.Warnings[:0]
	seen := make(map[string]bool)
	for i := range d.Children {
		c, err := d.Children[i].Child()
		if err != nil {
			d.Warnings = append(d.Warnings, Warning{
				Child:   d.Children[i].label(i),
				Field:   "child",
				Message: err.Error(),
			})
			continue
		}
		if seen[c.ID] {
			return fmt.Errorf("child %q appears more than once", c.ID)
		}
		seen[c.ID] = true
		_, errs := d.Children[i].ToMeasurements(c.ID)
		for _, err := range errs {
			d.Warnings = append(d.Warnings, Warning{
				Child: c.ID, Field: "measurement", Message: err.Error(),
			})
		}
	}
	return nil
}

// Records returns the number of measurements and intake entries.
func (d Document) Records() int {
	var res int
	for _, v := range d.Children {
		res += len(v.Measurements) + len(v.Intake)
	}
	return res
}

func (c ChildDoc) label(i int) string {
	if c.ID != "" {
		return c.ID
	}
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("#%d", i+1)
}

// Child converts the record into the first version of a child profile.
func (c ChildDoc) Child() (child.Child, error) {
	sex, err := child.ParseSex(c.Sex)
	if err != nil {
		return child.Child{}, err
	}
	birth, err := time.Parse(time.DateOnly, strings.TrimSpace(c.BirthDate))
	if err != nil {
		return child.Child{}, fmt.Errorf("birth_date %q is not YYYY-MM-DD", c.BirthDate)
	}
	name := strings.TrimSpace(c.Name)
	id := strings.TrimSpace(c.ID)
	if id == "" {
		if name == "" {
			return child.Child{}, errors.New("either id or name is required")
		}
		id = gnuuid.New(name + "|" + birth.Format(time.DateOnly)).String()
	}
	return child.Child{
		ID:        id,
		Name:      name,
		Sex:       sex,
		BirthDate: birth,
		Version:   1,
	}, nil
}

// ToMeasurements converts measurements of the child ordered by
// timestamp. IDs are derived from the child and the timestamp.
// Records with unreadable timestamps are returned as errors.
func (c ChildDoc) ToMeasurements(childID string) ([]history.Measurement, []error) {
	var res []history.Measurement
	var errs []error
	for _, v := range c.Measurements {
		ts, err := parseTime(v.Timestamp)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m := history.Measurement{
			ID:        gnuuid.New(childID + "|" + ts.Format(time.RFC3339Nano)).String(),
			ChildID:   childID,
			Timestamp: ts,
			WeightKg:  v.WeightKg,
			HeightCm:  v.HeightCm,
			Note:      strings.TrimSpace(v.Note),
		}
		if v.MUACCm != nil {
			muac := *v.MUACCm
			m.MUACCm = &muac
		}
		res = append(res, m)
	}
	slices.SortStableFunc(res, func(a, b history.Measurement) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return res, errs
}

// ToIntake converts intake entries of the child, grouped by date in
// file order.
func (c ChildDoc) ToIntake(childID string) []nutrient.IntakeEntry {
	res := make([]nutrient.IntakeEntry, 0, len(c.Intake))
	for i, v := range c.Intake {
		date := strings.TrimSpace(v.Date)
		e := nutrient.IntakeEntry{
			ID:          gnuuid.New(fmt.Sprintf("%s|%s|%d", childID, date, i)).String(),
			ChildID:     childID,
			Date:        date,
			FoodID:      strings.TrimSpace(v.FoodID),
			Portion:     v.Portion,
			Description: strings.TrimSpace(v.Description),
			Source:      nutrient.SourceImport,
		}
		if e.Portion == 0 {
			e.Portion = 1
		}
		if v.Nutrients != nil {
			a := nutrient.NewAmounts(
				v.Nutrients.Energy, v.Nutrients.Protein,
				v.Nutrients.Iron, v.Nutrients.Zinc,
			)
			e.AdHoc = &a
		}
		res = append(res, e)
	}
	slices.SortStableFunc(res, func(a, b nutrient.IntakeEntry) int {
		return strings.Compare(a.Date, b.Date)
	})
	return res
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if res, err := time.Parse(l, s); err == nil {
			return res.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q is not RFC 3339", s)
}
