package importdoc_test

import (
	"testing"
	"time"

	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/importdoc"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `
children:
  - id: sari
    name: Sari
    sex: perempuan
    birth_date: 2026-01-01
    measurements:
      - {timestamp: "2026-09-15 09:00", weight_kg: 8.1, height_cm: 70.5}
      - {timestamp: 2026-09-01T09:00:00Z, weight_kg: 8, height_cm: 70, muac_cm: 13.5}
      - {timestamp: yesterday, weight_kg: 8, height_cm: 70}
    intake:
      - {date: 2026-09-02, food_id: telur-rebus}
      - {date: 2026-09-01, description: ASI, nutrients: {energy: 100, protein: 2}}
  - name: Budi
    sex: m
    birth_date: 2025-06-10
  - name: Nobody
    sex: unknown
    birth_date: 2025-06-10
`

func TestParse(t *testing.T) {
	d, err := importdoc.ParseBytes("test", []byte(doc))
	require.NoError(t, err)
	require.Len(t, d.Children, 3)
	assert.Equal(t, 5, d.Records())

	require.NoError(t, d.Validate())
	require.Len(t, d.Warnings, 2)
	assert.Equal(t, "sari", d.Warnings[0].Child)
	assert.Equal(t, "measurement", d.Warnings[0].Field)
	assert.Equal(t, "Nobody", d.Warnings[1].Child)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		msg, text string
	}{
		{"empty", ""},
		{"unknown field", "kids: []"},
		{"broken", "children: ["},
	}
	for _, v := range tests {
		_, err := importdoc.ParseBytes("test", []byte(v.text))
		assert.True(t, errcode.Is(err, errcode.ImportReadError), v.msg)
	}

	d, err := importdoc.ParseBytes("test", []byte("children: []"))
	require.NoError(t, err)
	assert.Error(t, d.Validate())

	d, err = importdoc.ParseBytes("test", []byte(`
children:
  - {id: a, name: A, sex: f, birth_date: 2025-01-01}
  - {id: a, name: B, sex: m, birth_date: 2025-01-01}
`))
	require.NoError(t, err)
	assert.Error(t, d.Validate())
}

func TestChild(t *testing.T) {
	d, err := importdoc.ParseBytes("test", []byte(doc))
	require.NoError(t, err)

	c, err := d.Children[0].Child()
	require.NoError(t, err)
	assert.Equal(t, "sari", c.ID)
	assert.Equal(t, child.Female, c.Sex)
	assert.Equal(t, 1, c.Version)

	budi, err := d.Children[1].Child()
	require.NoError(t, err)
	again, err := d.Children[1].Child()
	require.NoError(t, err)
	assert.NotEmpty(t, budi.ID)
	assert.Equal(t, budi.ID, again.ID)
	assert.Equal(t, child.Male, budi.Sex)

	_, err = d.Children[2].Child()
	assert.Error(t, err)

	_, err = importdoc.ChildDoc{Sex: "f", BirthDate: "2025-01-01"}.Child()
	assert.Error(t, err)
	_, err = importdoc.ChildDoc{Name: "A", Sex: "f", BirthDate: "01/01/2025"}.Child()
	assert.Error(t, err)
}

func TestRecords(t *testing.T) {
	d, err := importdoc.ParseBytes("test", []byte(doc))
	require.NoError(t, err)

	ms, errs := d.Children[0].ToMeasurements("sari")
	assert.Len(t, errs, 1)
	require.Len(t, ms, 2)
	assert.Equal(t, time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), ms[0].Timestamp)
	assert.Equal(t, 13.5, *ms[0].MUACCm)
	assert.Nil(t, ms[1].MUACCm)
	assert.NotEqual(t, ms[0].ID, ms[1].ID)

	again, _ := d.Children[0].ToMeasurements("sari")
	assert.Equal(t, ms[0].ID, again[0].ID)

	in := d.Children[0].ToIntake("sari")
	require.Len(t, in, 2)
	assert.Equal(t, "2026-09-01", in[0].Date)
	require.NotNil(t, in[0].AdHoc)
	assert.Equal(t, 100.0, in[0].AdHoc.Get(nutrient.Energy))
	assert.Equal(t, "telur-rebus", in[1].FoodID)
	assert.Equal(t, 1.0, in[1].Portion)
	assert.Equal(t, nutrient.SourceImport, in[1].Source)
}
