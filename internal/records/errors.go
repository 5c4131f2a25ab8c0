package records

import "fmt"

// InvalidPropertyError reports a record constructed without a required
// contract object, or a malformed value hit during derived-field
// computation. The affected row is skipped; the run continues.
type InvalidPropertyError struct {
	Reason string
}

func (e *InvalidPropertyError) Error() string {
	return "invalid record property: " + e.Reason
}

func invalidProperty(format string, args ...any) error {
	return &InvalidPropertyError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidLengthError reports a data row whose field count does not
// match the captured header row. The row is skipped; the run
// continues.
type InvalidLengthError struct {
	HeaderLen int
	RowLen    int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("invalid record length: row has %d fields, header has %d", e.RowLen, e.HeaderLen)
}
