package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTemplateNotFound matches any *NotFoundError via errors.Is.
var ErrTemplateNotFound = errors.New("prompt template not found")

type NotFoundError struct {
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("prompt template %q not found: %v", e.Name, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func (e *NotFoundError) Is(target error) bool { return target == ErrTemplateNotFound }

// MissingPlaceholderError lists every placeholder of Template that had no
// value in the rendering context.
type MissingPlaceholderError struct {
	Template string
	Missing  []string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("template %q: missing placeholder values for %s", e.Template, strings.Join(e.Missing, ", "))
}

// SyntaxError marks a single brace that is neither escaped nor part of a
// {identifier} placeholder, such as "{first-name}" or "{ name }".
type SyntaxError struct {
	Template string
	Offset   int
	Near     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template %q: stray brace at offset %d near %q (write {{ or }} for a literal brace)", e.Template, e.Offset, e.Near)
}
