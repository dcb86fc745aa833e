package errcode_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	base := &gn.Error{
		Code: errcode.ReferenceDataGap,
		Msg:  "gap",
		Err:  errors.New("gap"),
	}

	tests := []struct {
		msg string
		err error
		res gn.ErrorCode
	}{
		{"direct", base, errcode.ReferenceDataGap},
		{"wrapped", fmt.Errorf("outer: %w", base), errcode.ReferenceDataGap},
		{"plain", errors.New("plain"), errcode.UnknownError},
		{"nil", nil, errcode.UnknownError},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, errcode.CodeOf(v.err), v.msg)
	}
}

func TestIs(t *testing.T) {
	err := &gn.Error{Code: errcode.ValidationError, Err: errors.New("bad")}
	assert.True(t, errcode.Is(err, errcode.ValidationError))
	assert.False(t, errcode.Is(err, errcode.ReferenceDataGap))
	assert.False(t, errcode.Is(nil, errcode.UnknownError))
}
