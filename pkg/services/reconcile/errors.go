package reconcile

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from a dataset. It is fatal
// to the run and raised before any aggregation happens.
type SchemaError struct {
	Dataset string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s file is missing required columns: %s", e.Dataset, strings.Join(e.Missing, ", "))
}

// UnexpectedError wraps any other failure during a run.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("reconciliation failed: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}
