package growth

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// ValidationError reports input that cannot be converted into a z-score.
func ValidationError(field, value, expected string) error {
	msg := "Invalid <em>%s</em> '%s', expected %s"
	vars := []any{field, value, expected}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ValidationError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: invalid %s %s",
			fn.Name(), field, value),
	}
}

// ReferenceDataGapError reports a value outside of the loaded reference
// tables. Zero lo and hi mean the table is missing altogether.
func ReferenceDataGapError(
	m Metric,
	sex child.Sex,
	value, lo, hi float64,
) error {
	msg := `No <em>%s</em> reference for %s at %s (covered: %s-%s)

<em>How to fix:</em>
  Ask a health worker to assess the child directly.`
	vars := []any{m, sex, formatFloat(value), formatFloat(lo), formatFloat(hi)}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReferenceDataGap,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: %s/%s reference does not cover %g",
			fn.Name(), m, sex, value),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
