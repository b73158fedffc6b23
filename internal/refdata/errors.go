package refdata

import (
	"fmt"
	"strings"
)

// maxRowErrors bounds how many malformed rows a LoadError carries.
const maxRowErrors = 25

// RowError describes one malformed CSV row.
type RowError struct {
	Line    int
	Message string
}

func (r RowError) String() string {
	return fmt.Sprintf("line %d: %s", r.Line, r.Message)
}

// LoadError represents missing or malformed reference data.
// A snapshot is never produced when a LoadError occurs.
type LoadError struct {
	Source  string
	Message string
	Rows    []RowError
	Total   int // every malformed row, including those beyond Rows
	Cause   error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "load error: %s: %s", e.Source, e.Message)
	if len(e.Rows) > 0 {
		fmt.Fprintf(&b, " (%d malformed rows; first %s)", e.Total, e.Rows[0])
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// DataIntegrityError is a well-formed row that contradicts the data model,
// such as an unknown vote label or a town with two base districts.
type DataIntegrityError struct {
	Source  string
	Line    int
	Message string
}

func (e *DataIntegrityError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("data integrity error: %s line %d: %s", e.Source, e.Line, e.Message)
	}
	return fmt.Sprintf("data integrity error: %s: %s", e.Source, e.Message)
}

// rowErrors accumulates malformed rows for one source.
type rowErrors struct {
	source string
	rows   []RowError
	total  int
}

func (r *rowErrors) add(line int, format string, args ...any) {
	r.total++
	if len(r.rows) < maxRowErrors {
		r.rows = append(r.rows, RowError{Line: line, Message: fmt.Sprintf(format, args...)})
	}
}

func (r *rowErrors) err() error {
	if r.total == 0 {
		return nil
	}
	return &LoadError{Source: r.source, Message: "malformed rows", Rows: r.rows, Total: r.total}
}
