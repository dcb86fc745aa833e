package iooptimize_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gizisehat/gizi/internal/iooptimize"
	"github.com/gizisehat/gizi/internal/iostore"
	"github.com/gizisehat/gizi/internal/iotesting"
	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/classify"
	"github.com/gizisehat/gizi/pkg/config"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, childID string, at time.Time) history.Record {
	return history.Record{
		Measurement: history.Measurement{
			ID: id, ChildID: childID, Timestamp: at,
			WeightKg: 8, HeightCm: 70, Seq: 1,
		},
		AgeMonths: 8, Verdict: classify.Normal,
	}
}

func TestOptimize(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gizi.sqlite")
	t0 := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	repo, err := iostore.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repo.SaveChild(ctx, child.Child{
		ID: "sari", Name: "Sari", Sex: child.Female,
		BirthDate: t0.AddDate(0, -8, 0), Version: 1, CreatedAt: t0,
	}))
	require.NoError(t, repo.AppendMeasurement(ctx, record("m1", "sari", t0)))
	require.NoError(t, repo.AppendMeasurement(ctx, record("m2", "ghost", t0)))
	require.NoError(t, repo.SaveSession(ctx, gizi.Session{
		ID: "s1", ChildID: "ghost", CreatedAt: t0,
	}))
	require.NoError(t, repo.AppendMessage(ctx, assistant.Message{
		ID: "msg1", SessionID: "s1", Seq: 1, Role: assistant.Assistant,
		Text: "Halo", Timestamp: t0,
	}))
	require.NoError(t, repo.Close())

	cfg := config.New()
	cfg.Update([]config.Option{config.OptDatabasePath(path)})
	opt, err := iooptimize.Open(ctx, cfg)
	require.NoError(t, err)
	defer opt.Close()

	res, err := opt.Optimize(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"measurements": 1,
		"sessions":     1,
		"messages":     1,
	}, res.Removed)
	assert.Equal(t, int64(1), res.Rows["children"])
	assert.Equal(t, int64(1), res.Rows["measurements"])
	assert.Equal(t, int64(0), res.Rows["messages"])

	t.Run("again", func(t *testing.T) {
		res, err := opt.Optimize(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Removed)
	})
}

func TestOpenMemory(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptDatabaseDriver("memory")})
	_, err := iooptimize.Open(context.Background(), cfg)
	assert.True(t, errcode.Is(err, errcode.DBConnectionError))
}

func TestOptimizePostgres(t *testing.T) {
	iotesting.RequirePostgres(t)
	ctx := context.Background()
	dbCfg := iotesting.GetTestDatabaseConfig()

	repo, err := iostore.OpenPostgres(ctx, dbCfg)
	require.NoError(t, err)
	require.NoError(t, repo.Init(ctx))
	t0 := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AppendMeasurement(ctx,
		record("pg-orphan-"+t.Name(), "nobody-"+t.Name(), t0)))
	require.NoError(t, repo.Close())

	cfg := config.New()
	cfg.Database = *dbCfg
	cfg.Update([]config.Option{config.OptDatabaseDriver("postgres")})
	opt, err := iooptimize.Open(ctx, cfg)
	require.NoError(t, err)
	defer opt.Close()

	res, err := opt.Optimize(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Removed["measurements"], int64(1))
	assert.Contains(t, res.Rows, "children")
}
