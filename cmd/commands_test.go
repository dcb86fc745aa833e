package cmd

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/config"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteConfig points the global config to a fresh SQLite file.
func sqliteConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	cfg = config.New()
	cfg.Update([]config.Option{
		config.OptDatabaseDriver("sqlite"),
		config.OptDatabasePath(filepath.Join(home, "gizi.sqlite")),
		config.OptHomeDir(home),
	})
}

func TestCommandsFlow(t *testing.T) {
	sqliteConfig(t)
	at := time.Now().UTC().Add(-time.Hour)
	birth := at.AddDate(0, -9, 0).Format(time.DateOnly)

	require.NoError(t, runCreate(false))
	require.NoError(t, runMigrate())
	require.NoError(t, runOptimize())
	require.NoError(t, runChildAdd("sari", "Sari", "perempuan", birth))
	require.NoError(t, runAssess("sari", history.Measurement{
		Timestamp: at, WeightKg: 8, HeightCm: 70,
	}))
	require.NoError(t, runIntakeLog("sari", nutrient.IntakeEntry{
		Date: day(""), FoodID: "telur-rebus", Portion: 1,
	}))
	require.NoError(t, runChildCorrect("sari", "Sari Dewi", "", ""))

	// every command opens storage again, so the records are on disk
	err := withEngine(func(ctx context.Context, svc gizi.Gizi) error {
		c, err := svc.Child(ctx, "sari")
		require.NoError(t, err)
		assert.Equal(t, "Sari Dewi", c.Name)
		assert.Equal(t, 2, c.Version)

		seq, err := svc.History(ctx, "sari")
		require.NoError(t, err)
		assert.Len(t, slices.Collect(seq), 1)

		p, err := svc.DailyProgress(ctx, "sari", day(""))
		require.NoError(t, err)
		assert.Equal(t, 1, p.Entries)

		plan, err := svc.MealPlan(ctx, "sari", day(""))
		require.NoError(t, err)
		assert.NotEmpty(t, plan.Meals)

		return runAsk(ctx, svc, "sari", "", "MPASI 9 bulan", "")
	})
	require.NoError(t, err)

	require.NoError(t, runChart("sari", "wfa"))
	err = runChart("sari", "iq")
	assert.True(t, errcode.Is(err, errcode.ValidationError))
}

func TestCommandErrors(t *testing.T) {
	sqliteConfig(t)

	err := runChildAdd("", "Sari", "unknown", "2026-01-01")
	assert.True(t, errcode.Is(err, errcode.ValidationError))

	err = runChildAdd("", "Sari", "f", "01/01/2026")
	assert.True(t, errcode.Is(err, errcode.ValidationError))

	err = runAssess("nobody", history.Measurement{WeightKg: 8, HeightCm: 70})
	assert.True(t, errcode.Is(err, errcode.NotFoundError))

	err = runIntakePhoto("nobody", filepath.Join(t.TempDir(), "none.jpg"), day(""), "")
	assert.True(t, errcode.Is(err, errcode.ReadFileError))

	err = runImport(filepath.Join(t.TempDir(), "none.yaml"), 1)
	assert.True(t, errcode.Is(err, errcode.ReadFileError))

	cfg.Update([]config.Option{config.OptDatabaseDriver("memory")})
	err = runChildCorrect("nobody", "X", "", "")
	assert.True(t, errcode.Is(err, errcode.NotFoundError))
}

func TestChipID(t *testing.T) {
	chips := []assistant.QuickReply{
		{IntentID: "mpasi", Text: "Menu MPASI"},
		{IntentID: "protein", Text: "Sumber protein"},
	}
	tests := []struct {
		msg, input, id string
		ok             bool
	}{
		{"first", "#1", "mpasi", true},
		{"second", "#2", "protein", true},
		{"out of range", "#3", "", false},
		{"zero", "#0", "", false},
		{"free text", "halo", "", false},
	}
	for _, v := range tests {
		id, ok := chipID(chips, v.input)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.id, id, v.msg)
	}
}

func TestDay(t *testing.T) {
	assert.Equal(t, "2026-10-01", day("2026-10-01"))
	assert.Equal(t, nutrient.DateOf(time.Now()), day(""))
}

func TestStorageName(t *testing.T) {
	c := config.New()
	c.Update([]config.Option{config.OptHomeDir("/home/ibu")})
	assert.Equal(t, config.SQLitePath("/home/ibu"), storageName(c))

	c.Update([]config.Option{config.OptDatabaseDriver("postgres")})
	assert.Equal(t, "postgres@localhost:5432/gizi", storageName(c))

	c.Update([]config.Option{config.OptDatabaseDriver("memory")})
	assert.Equal(t, "in-memory", storageName(c))
}
