package prompt

import (
	"regexp"
	"sort"
	"strings"
)

// Template is a named prompt text with {identifier} placeholders. Doubled
// braces render as a single literal brace; any other single brace is a
// syntax error.
type Template struct {
	Name string
	Text string
}

// Context maps placeholder names to the literal text substituted for them.
type Context map[string]string

var tokenPattern = regexp.MustCompile(`\{\{|\}\}|\{([A-Za-z_][A-Za-z0-9_]*)\}|[{}]`)

// Placeholders returns the distinct placeholder names in order of first appearance.
func (t Template) Placeholders() []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(t.Text, -1) {
		if m[2] < 0 {
			continue
		}
		name := t.Text[m[2]:m[3]]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Check reports the first stray brace in t as a *SyntaxError.
func (t Template) Check() error {
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(t.Text, -1) {
		if m[1]-m[0] == 1 {
			return &SyntaxError{Template: t.Name, Offset: m[0], Near: near(t.Text, m[0])}
		}
	}
	return nil
}

func near(text string, at int) string {
	end := min(at+20, len(text))
	if i := strings.IndexByte(text[at:end], '\n'); i >= 0 {
		end = at + i
	}
	return text[at:end]
}

// Render substitutes every placeholder of t from ctx in a single pass.
// Substituted values are inserted verbatim and never rescanned. When the
// template has a stray brace, or any placeholder lacks a value, nothing is
// rendered.
func Render(t Template, ctx Context) (string, error) {
	if err := t.Check(); err != nil {
		return "", err
	}
	matches := tokenPattern.FindAllStringSubmatchIndex(t.Text, -1)

	var missing []string
	for _, name := range t.Placeholders() {
		if _, ok := ctx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &MissingPlaceholderError{Template: t.Name, Missing: missing}
	}

	var b strings.Builder
	b.Grow(len(t.Text))
	last := 0
	for _, m := range matches {
		b.WriteString(t.Text[last:m[0]])
		switch {
		case m[2] >= 0:
			b.WriteString(ctx[t.Text[m[2]:m[3]]])
		default:
			// escaped brace: "{{" or "}}"
			b.WriteByte(t.Text[m[0]])
		}
		last = m[1]
	}
	b.WriteString(t.Text[last:])
	return b.String(), nil
}
