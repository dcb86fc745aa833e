// Package facility is the directory of nearby health services a
// caregiver can be referred to.
package facility

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/gnames/gnuuid"
)

// Type of a health facility.
type Type int

const (
	UnknownType Type = iota
	Puskesmas
	Posyandu
	Hospital
	Clinic
)

func (t Type) String() string {
	switch t {
	case Puskesmas:
		return "Puskesmas"
	case Posyandu:
		return "Posyandu"
	case Hospital:
		return "Rumah Sakit"
	case Clinic:
		return "Klinik"
	default:
		return "Lainnya"
	}
}

// ParseType converts a facility type name.
func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "puskesmas":
		return Puskesmas
	case "posyandu":
		return Posyandu
	case "rumah sakit", "rs", "hospital":
		return Hospital
	case "klinik", "clinic":
		return Clinic
	}
	return UnknownType
}

// Icon maps every facility type to its display icon.
func (t Type) Icon() string {
	switch t {
	case Puskesmas:
		return "stethoscope"
	case Posyandu:
		return "users"
	case Hospital:
		return "hospital"
	case Clinic:
		return "heart-pulse"
	default:
		return "map-pin"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Facility is a health service near the family.
type Facility struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       Type     `json:"type"`
	DistanceKm float64  `json:"distance_km"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	Hours      string   `json:"hours"`
	Services   []string `json:"services"`
	// NextSchedule is set for facilities that open on a schedule, like
	// a Posyandu.
	NextSchedule string `json:"next_schedule,omitempty"`
}

// Status is "Buka" for always-open facilities and "Jadwal" for the
// scheduled ones.
func (f Facility) Status() string {
	if f.NextSchedule != "" {
		return "Jadwal"
	}
	return "Buka"
}

// Offers reports whether the facility provides the service.
func (f Facility) Offers(service string) bool {
	return slices.ContainsFunc(f.Services, func(s string) bool {
		return strings.EqualFold(s, strings.TrimSpace(service))
	})
}

// Directory is a read-only list of facilities.
type Directory struct {
	items []Facility
}

// NewDirectory validates and copies facilities.
func NewDirectory(items ...Facility) (*Directory, error) {
	res := &Directory{items: make([]Facility, 0, len(items))}
	seen := make(map[string]struct{}, len(items))
	for _, v := range items {
		if strings.TrimSpace(v.Name) == "" {
			return nil, fmt.Errorf("facility %q has no name", v.ID)
		}
		if v.ID == "" {
			v.ID = gnuuid.New(v.Name).String()
		}
		if _, ok := seen[v.ID]; ok {
			return nil, fmt.Errorf("duplicate facility id %q", v.ID)
		}
		if v.DistanceKm < 0 {
			return nil, fmt.Errorf("facility %q has negative distance", v.Name)
		}
		seen[v.ID] = struct{}{}
		v.Services = slices.Clone(v.Services)
		res.items = append(res.items, v)
	}
	return res, nil
}

// Len returns the number of facilities.
func (d *Directory) Len() int {
	return len(d.items)
}

// Nearest returns up to n facilities offering the service, closest
// first. An empty service matches every facility, n <= 0 means no limit.
func (d *Directory) Nearest(service string, n int) []Facility {
	var res []Facility
	for _, v := range d.items {
		if service == "" || v.Offers(service) {
			v.Services = slices.Clone(v.Services)
			res = append(res, v)
		}
	}
	slices.SortFunc(res, func(a, b Facility) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if n > 0 && len(res) > n {
		res = res[:n]
	}
	return res
}

// NearestOfType returns the closest facility of the type.
func (d *Directory) NearestOfType(t Type) (Facility, bool) {
	for _, v := range d.Nearest("", 0) {
		if v.Type == t {
			return v, true
		}
	}
	return Facility{}, false
}
