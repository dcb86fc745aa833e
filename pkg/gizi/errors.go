package gizi

import (
	"fmt"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// NotFoundError is returned when a child, session or other record does
// not exist.
func NotFoundError(kind, id string) error {
	msg := "Cannot find %s <em>%s</em>"
	return &gn.Error{
		Code: errcode.NotFoundError,
		Msg:  msg,
		Vars: []any{kind, id},
		Err:  fmt.Errorf("%s %q not found", kind, id),
	}
}

// ExternalServiceError is returned when an external provider fails or
// times out. Nothing is written in that case.
func ExternalServiceError(service string, err error) error {
	msg := `External service <em>%s</em> is unavailable

<em>How to fix:</em>
  1. Try again later
  2. Log the food manually`
	return &gn.Error{
		Code: errcode.ExternalServiceFailure,
		Msg:  msg,
		Vars: []any{service},
		Err:  fmt.Errorf("%s failed: %w", service, err),
	}
}
