package analysis

import (
	"fmt"
	"strings"
)

// MalformedOutputError means the model output could not be decoded into a mapping.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

type Violation struct {
	Field   string
	Problem string
}

func (v Violation) String() string { return v.Field + ": " + v.Problem }

// SchemaViolationError carries every problem found in a decoded response.
type SchemaViolationError struct {
	Violations []Violation
}

func (e *SchemaViolationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("model output violates schema: %s", strings.Join(parts, "; "))
}
