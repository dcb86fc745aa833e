package importdoc

import (
	"fmt"
	"runtime"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// ParseError reports an import file that is not a valid document.
func ParseError(source string, err error) error {
	msg := "Cannot parse import file <em>%s</em>"
	vars := []any{source}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ImportReadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot parse %s: %w",
			fn.Name(), source, err),
	}
}
