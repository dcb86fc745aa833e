package ioservice

import (
	"errors"
	"fmt"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// DuplicateChildError is returned when a child ID is already registered.
func DuplicateChildError(id string) error {
	msg := `Child <em>%s</em> is already registered
<em>How to fix:</em>
  Use a correction to update the profile`
	return &gn.Error{
		Code: errcode.ValidationError,
		Msg:  msg,
		Vars: []any{id},
		Err:  fmt.Errorf("child %q already exists", id),
	}
}

// InvalidInputError is returned for malformed API arguments.
func InvalidInputError(field, value, expected string) error {
	msg := "Invalid <em>%s</em> '%s', expected %s"
	return &gn.Error{
		Code: errcode.ValidationError,
		Msg:  msg,
		Vars: []any{field, value, expected},
		Err:  fmt.Errorf("invalid %s %q", field, value),
	}
}

var errNoAnalyzer = errors.New("photo analysis is not configured")

var errNoFood = errors.New("estimate has neither a catalog food nor nutrients")
