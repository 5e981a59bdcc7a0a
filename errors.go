package surveygo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingName is returned when a survey is constructed without a name.
	ErrMissingName = errors.New("a survey needs a name")

	// ErrMissingVariable is returned when a lookup is called without a
	// variable name.
	ErrMissingVariable = errors.New("a variable name is required")

	// ErrMissingTable is returned when a lookup is called without a table
	// name.
	ErrMissingTable = errors.New("a table name is required")

	// ErrTableNotFound is returned when a table resolves neither directly nor
	// via its Rdata_table alias.
	ErrTableNotFound = errors.New("table not found")

	// ErrNoStorePath is returned when a read is attempted before the survey
	// has a store path, explicit or derived.
	ErrNoStorePath = errors.New("survey has no store path")
)

// MissingVariablesError indicates requested variables absent from the
// resolved table's columns.
type MissingVariablesError struct {
	Table   string
	Missing []string
}

func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf("the following variable(s) are missing from table %q: %s",
		e.Table, strings.Join(e.Missing, ", "))
}

// UnsupportedFormatError indicates a source file whose extension has no entry
// in the extension-to-format table.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported source file extension: %q", e.Extension)
}
