package nutrient

import (
	"fmt"
	"runtime"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// ValidationError reports a malformed intake entry or catalog item.
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

// ReferenceDataGapError reports an age without nutrient targets.
func ReferenceDataGapError(ageMonths float64) error {
	msg := `No daily nutrient targets for age <em>%.1f</em> months

<em>How to fix:</em>
  Ask a nutritionist about the child's daily needs.`
	vars := []any{ageMonths}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReferenceDataGap,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: no targets for age %g",
			fn.Name(), ageMonths),
	}
}

// MealPlanGapError reports an age without a feeding schedule.
func MealPlanGapError(ageMonths float64) error {
	msg := "No meal plan for age <em>%.1f</em> months"
	vars := []any{ageMonths}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReferenceDataGap,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: no meal plan for age %g",
			fn.Name(), ageMonths),
	}
}
