package ioschema_test

import (
	"context"
	"testing"

	"github.com/gizisehat/gizi/internal/iodb"
	"github.com/gizisehat/gizi/internal/ioschema"
	"github.com/gizisehat/gizi/internal/iotesting"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_NotConnected(t *testing.T) {
	mgr := ioschema.NewManager(iodb.NewPgxOperator())
	err := mgr.Migrate(context.Background())
	assert.True(t, errcode.Is(err, errcode.DBNotConnectedError))
	err = mgr.Create(context.Background(), false)
	assert.True(t, errcode.Is(err, errcode.DBNotConnectedError))
}

func TestManager_Create(t *testing.T) {
	iotesting.RequirePostgres(t)

	ctx := context.Background()
	op := iodb.NewPgxOperator()
	require.NoError(t, op.Connect(ctx, iotesting.GetTestDatabaseConfig()))
	defer op.Close()

	mgr := ioschema.NewManager(op)
	require.NoError(t, mgr.Create(ctx, true))
	// idempotent
	require.NoError(t, mgr.Create(ctx, false))
	require.NoError(t, mgr.Migrate(ctx))

	for _, g := range schema.Generators() {
		exists, err := op.TableExists(ctx, g.TableName())
		require.NoError(t, err)
		assert.True(t, exists, g.TableName())
	}
}
