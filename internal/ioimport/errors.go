package ioimport

import (
	"fmt"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// RecordError is returned when records of a child cannot be stored.
// The import stops, records stored before the failure are kept.
func RecordError(childID string, err error) error {
	msg := `Cannot import records of child <em>%s</em>
<em>How to fix:</em>
  Check storage settings and run the import again, stored records
  are skipped`
	return &gn.Error{
		Code: errcode.ImportRecordError,
		Msg:  msg,
		Vars: []any{childID},
		Err:  fmt.Errorf("import child %q: %w", childID, err),
	}
}
