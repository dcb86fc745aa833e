package refdata

import (
	"fmt"
	"runtime"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// ParseError reports reference data that is not a valid document.
func ParseError(source string, err error) error {
	msg := "Cannot parse reference data from <em>%s</em>"
	vars := []any{source}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReferenceParseError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot parse %s: %w",
			fn.Name(), source, err),
	}
}

// BuildError reports an inconsistent section of reference data.
func BuildError(section string, err error) error {
	msg := `Reference data section <em>%s</em> is invalid: %s

<em>How to fix:</em>
  Check the reference file set in config.yaml or remove it to use
  embedded data.`
	vars := []any{section, err}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReferenceBuildError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: invalid %s: %w",
			fn.Name(), section, err),
	}
}
