package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn indicates a required header could not be resolved.
	ErrMissingColumn = errors.New("missing required column")
	// ErrBadDate indicates a row's date matched none of the accepted formats.
	ErrBadDate = errors.New("unparseable date")
	// ErrBadValue indicates a numeric column held a value that is not a finite number.
	ErrBadValue = errors.New("unparseable numeric value")
	// ErrNoData is returned when an upload yields no dated rows.
	ErrNoData = errors.New("no data rows")
	// ErrNoSummary is returned when a summary is requested before any successful upload.
	ErrNoSummary = errors.New("no summary available, upload a CSV first")
	// ErrUpstreamUnavailable is raised by the insight generator when it cannot produce a narrative.
	ErrUpstreamUnavailable = errors.New("insight generator unavailable")
)

// MissingColumnError names the field and the aliases that were sought.
type MissingColumnError struct {
	Field   Field
	Aliases []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("csv missing required header %q, expected one of: [%s]", e.Field, strings.Join(e.Aliases, ", "))
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// BadDateError carries the offending raw date string.
type BadDateError struct {
	Raw  string
	Line int
}

func (e *BadDateError) Error() string {
	return fmt.Sprintf("line %d: unparseable date %q (expected yyyy-mm-dd, m/d/yy or yyyy/m/d)", e.Line, e.Raw)
}

func (e *BadDateError) Unwrap() error { return ErrBadDate }

// BadValueError carries the offending raw cell of a numeric column.
type BadValueError struct {
	Field Field
	Raw   string
	Line  int
}

func (e *BadValueError) Error() string {
	return fmt.Sprintf("line %d: column %q holds non-numeric value %q", e.Line, e.Field, e.Raw)
}

func (e *BadValueError) Unwrap() error { return ErrBadValue }

// ErrorKind returns the stable machine-readable code for a pipeline error, or "" when err is
// not one of the known kinds.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrBadDate):
		return "bad_date"
	case errors.Is(err, ErrBadValue):
		return "bad_value"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrNoSummary):
		return "no_summary"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return ""
	}
}
