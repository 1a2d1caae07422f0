package record

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// checkFixed validates a fixed-width character field per spec.md §6: at
// most max characters, no embedded NUL (the original stores a trailing
// null terminator; Go strings need only the length bound and the same
// no-embedded-NUL rule to carry the same guarantee).
func checkFixed(field string, max int, value string) error {
	if len(value) > max {
		return errors.Newf("field %s exceeds max width %d (got %d)", field, max, len(value))
	}
	if strings.IndexByte(value, 0) != -1 {
		return errors.Newf("field %s contains an embedded NUL byte", field)
	}
	return nil
}
