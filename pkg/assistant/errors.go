package assistant

import (
	"fmt"
	"runtime"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// ValidationError reports a bad assistant request, like an unknown
// quick-reply.
func ValidationError(field, value, expected string) error {
	msg := "Invalid <em>%s</em> '%s', expected %s"
	vars := []any{field, value, expected}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ValidationError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: invalid %s %q",
			fn.Name(), field, value),
	}
}

// UnknownIntentError is the internal signal that no intent matched.
// It is never returned to callers of Engine.
func UnknownIntentError(text string) error {
	msg := "No intent matches '%s'"
	vars := []any{text}
	return &gn.Error{
		Code: errcode.UnknownIntent,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no intent matches %q", text),
	}
}
