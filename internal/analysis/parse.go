package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sigs.k8s.io/yaml"
)

// Parse decodes a model response (YAML or JSON, optionally inside a Markdown
// code fence) and validates it against schema. Every field is checked; all
// problems are reported together. Keys not in schema are dropped.
func Parse(raw string, schema Schema) (Record, error) {
	doc, err := decode(raw)
	if err != nil {
		return nil, err
	}

	rec := Record{}
	var violations []Violation
	for _, f := range schema {
		v, present := doc[f.Name]
		if !present || v == nil {
			if f.Required {
				violations = append(violations, Violation{Field: f.Name, Problem: "required field is missing"})
			}
			continue
		}
		value, problem := coerce(f, v)
		if problem != "" {
			violations = append(violations, Violation{Field: f.Name, Problem: problem})
			continue
		}
		rec[f.Name] = value
	}
	if len(violations) > 0 {
		return nil, &SchemaViolationError{Violations: violations}
	}
	return rec, nil
}

// Serialize renders a record as YAML that Parse accepts again.
func Serialize(r Record) (string, error) {
	out, err := yaml.Marshal(map[string]any(r))
	if err != nil {
		return "", fmt.Errorf("serialize record: %w", err)
	}
	return string(out), nil
}

func decode(raw string) (map[string]any, error) {
	text := stripFence(raw)
	if text == "" {
		return nil, &MalformedOutputError{Raw: raw, Err: errors.New("empty response")}
	}
	js, err := yaml.YAMLToJSON([]byte(text))
	if err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: err}
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: err}
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, &MalformedOutputError{Raw: raw, Err: fmt.Errorf("expected a mapping, got %s", kind(doc))}
	}
	return m, nil
}

// stripFence removes a surrounding ``` fence (with optional language tag).
func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = ""
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func coerce(f Field, v any) (any, string) {
	switch f.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Sprintf("expected string, got %s", kind(v))
		}
		return s, ""
	case TypeEnum:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Sprintf("expected one of [%s], got %s", strings.Join(f.Allowed, ", "), kind(v))
		}
		for _, allowed := range f.Allowed {
			if strings.EqualFold(strings.TrimSpace(s), allowed) {
				return allowed, ""
			}
		}
		return nil, fmt.Sprintf("%q is not one of [%s]", s, strings.Join(f.Allowed, ", "))
	case TypeStringList:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Sprintf("expected list of strings, got %s", kind(v))
		}
		out := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Sprintf("item %d: expected string, got %s", i, kind(item))
			}
			out = append(out, s)
		}
		return out, ""
	default:
		return nil, fmt.Sprintf("unknown field type %q", f.Type)
	}
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
