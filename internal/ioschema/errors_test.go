package ioschema

import (
	"errors"
	"testing"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_Structure(t *testing.T) {
	originalErr := errors.New("database error")

	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
		wrap bool
	}{
		{"not connected", NotConnectedError(), errcode.DBNotConnectedError, false},
		{"gorm", GORMConnectionError(originalErr), errcode.SchemaGORMConnectionError, true},
		{"create", CreateSchemaError(originalErr), errcode.SchemaCreateError, true},
		{"migrate", MigrateSchemaError(originalErr), errcode.SchemaMigrateError, true},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			gnErr, ok := v.err.(*gn.Error)
			require.True(t, ok, "Error should be of type *gn.Error")
			assert.Equal(t, v.code, gnErr.Code)
			assert.NotEmpty(t, gnErr.Msg)
			if v.wrap {
				assert.ErrorIs(t, gnErr.Err, originalErr)
			}
		})
	}
}
