// Package child describes the child whose growth and nutrition are tracked.
package child

import (
	"fmt"
	"strings"
	"time"
)

// DaysPerMonth is the average month length used by the WHO growth
// standards to convert age in days to age in months.
const DaysPerMonth = 30.4375

// Sex of a child. Growth references are sex-specific.
type Sex int

const (
	UnknownSex Sex = iota
	Female
	Male
)

// String returns the canonical name of the sex.
func (s Sex) String() string {
	switch s {
	case Female:
		return "female"
	case Male:
		return "male"
	default:
		return "unknown"
	}
}

// ParseSex converts user input into Sex. Indonesian forms are accepted.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "female", "f", "girl", "perempuan", "p":
		return Female, nil
	case "male", "m", "boy", "laki-laki", "l":
		return Male, nil
	}
	return UnknownSex, ValidationError("sex", s, "female or male")
}

// MarshalText implements encoding.TextMarshaler.
func (s Sex) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sex) UnmarshalText(b []byte) error {
	res, err := ParseSex(string(b))
	if err != nil {
		return err
	}
	*s = res
	return nil
}

// Child is immutable. A guardian correction produces a new Child with
// the same ID and Version incremented by one.
type Child struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Sex       Sex       `json:"sex"`
	BirthDate time.Time `json:"birth_date"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that the child record is usable for assessment.
func (c Child) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ValidationError("id", c.ID, "non-empty identifier")
	}
	if c.Sex != Female && c.Sex != Male {
		return ValidationError("sex", c.Sex.String(), "female or male")
	}
	if c.BirthDate.IsZero() {
		return ValidationError("birth_date", "", "a date")
	}
	if c.Version < 1 {
		return ValidationError("version", fmt.Sprint(c.Version), "1 or higher")
	}
	return nil
}

// Correct returns the next version of the child with updated fields.
func (c Child) Correct(name string, sex Sex, birth time.Time, at time.Time) Child {
	res := c
	if name != "" {
		res.Name = name
	}
	if sex != UnknownSex {
		res.Sex = sex
	}
	if !birth.IsZero() {
		res.BirthDate = birth
	}
	res.Version = c.Version + 1
	res.CreatedAt = at
	return res
}

// AgeInMonths returns the age of the child at the given moment in
// WHO months.
func (c Child) AgeInMonths(at time.Time) (float64, error) {
	return AgeInMonths(c.BirthDate, at)
}

// AgeInMonths returns elapsed days between birth and at divided by
// DaysPerMonth. A moment before birth is a validation error.
func AgeInMonths(birth, at time.Time) (float64, error) {
	days := at.Sub(birth).Hours() / 24
	if days < 0 {
		return 0, ValidationError(
			"timestamp", at.Format(time.DateOnly), "a moment after birth",
		)
	}
	return days / DaysPerMonth, nil
}

// AgeLabel renders age the way caregivers read it: "8 bulan",
// "2 tahun 4 bulan".
func AgeLabel(months float64) string {
	m := int(months)
	years, rest := m/12, m%12
	switch {
	case years == 0:
		return fmt.Sprintf("%d bulan", rest)
	case rest == 0:
		return fmt.Sprintf("%d tahun", years)
	default:
		return fmt.Sprintf("%d tahun %d bulan", years, rest)
	}
}
