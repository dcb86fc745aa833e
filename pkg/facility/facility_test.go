package facility_test

import (
	"testing"

	"github.com/gizisehat/gizi/pkg/facility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directory(t *testing.T) *facility.Directory {
	t.Helper()
	d, err := facility.NewDirectory(
		facility.Facility{Name: "Puskesmas Sehat Mandiri", Type: facility.Puskesmas,
			DistanceKm: 1.2, Services: []string{"Gizi", "Imunisasi", "KIA"}},
		facility.Facility{Name: "Posyandu Melati 01", Type: facility.Posyandu,
			DistanceKm: 0.8, Services: []string{"Timbang", "Imunisasi", "Konseling"},
			NextSchedule: "Minggu, 28 Jan 2024"},
		facility.Facility{Name: "Posyandu Mawar 02", Type: facility.Posyandu,
			DistanceKm: 1.5, Services: []string{"Timbang", "Penyuluhan", "MPASI"},
			NextSchedule: "Rabu, 31 Jan 2024"},
	)
	require.NoError(t, err)
	return d
}

func TestNearest(t *testing.T) {
	d := directory(t)
	assert.Equal(t, 3, d.Len())

	tests := []struct {
		service string
		n       int
		names   []string
	}{
		{"", 0, []string{"Posyandu Melati 01", "Puskesmas Sehat Mandiri", "Posyandu Mawar 02"}},
		{"imunisasi", 0, []string{"Posyandu Melati 01", "Puskesmas Sehat Mandiri"}},
		{"Gizi", 5, []string{"Puskesmas Sehat Mandiri"}},
		{"", 1, []string{"Posyandu Melati 01"}},
		{"bedah", 0, nil},
	}
	for _, v := range tests {
		var names []string
		for _, f := range d.Nearest(v.service, v.n) {
			names = append(names, f.Name)
		}
		assert.Equal(t, v.names, names, v.service)
	}

	f, ok := d.NearestOfType(facility.Puskesmas)
	require.True(t, ok)
	assert.Equal(t, "Buka", f.Status())
	assert.Equal(t, "stethoscope", f.Type.Icon())
	_, ok = d.NearestOfType(facility.Hospital)
	assert.False(t, ok)
}

func TestTypeMappings(t *testing.T) {
	types := []facility.Type{facility.Puskesmas, facility.Posyandu,
		facility.Hospital, facility.Clinic, facility.UnknownType}
	for _, v := range types {
		assert.NotEmpty(t, v.Icon())
		if v != facility.UnknownType {
			assert.Equal(t, v, facility.ParseType(v.String()))
		}
	}
}

func TestNewDirectoryErrors(t *testing.T) {
	_, err := facility.NewDirectory(facility.Facility{ID: "x"})
	assert.Error(t, err)
	_, err = facility.NewDirectory(
		facility.Facility{ID: "x", Name: "A"},
		facility.Facility{ID: "x", Name: "B"},
	)
	assert.Error(t, err)
}
