package iofs

import (
	"errors"
	"testing"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_Structure(t *testing.T) {
	originalErr := errors.New("permission denied")

	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
		path string
		text string
	}{
		{"create dir", CreateDirError("/test/dir", originalErr), errcode.CreateDirError, "/test/dir", "cannot create"},
		{"copy", CopyFileError("/test/config.yaml", originalErr), errcode.CopyFileError, "/test/config.yaml", "cannot copy"},
		{"read", ReadFileError("/test/data.yaml", originalErr), errcode.ReadFileError, "/test/data.yaml", "cannot read"},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			gnErr, ok := v.err.(*gn.Error)
			require.True(t, ok, "Error should be of type *gn.Error")

			assert.Equal(t, v.code, gnErr.Code)
			assert.Contains(t, gnErr.Msg, "%s")
			require.Len(t, gnErr.Vars, 1)
			assert.Equal(t, v.path, gnErr.Vars[0])
			assert.ErrorIs(t, gnErr.Err, originalErr)
			assert.Contains(t, gnErr.Err.Error(), v.text)
			assert.Contains(t, gnErr.Err.Error(), "from ")
			assert.Contains(t, gnErr.Err.Error(), "TestErrors_Structure")
		})
	}
}
