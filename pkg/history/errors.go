package history

import (
	"fmt"
	"runtime"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// ValidationError reports a measurement that cannot be appended.
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
