package llm

import (
	"fmt"
	"strings"
)

type ResponseFormat string

const (
	FormatText ResponseFormat = "text"
	FormatJSON ResponseFormat = "json"
)

// Options configure a single completion call.
type Options struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	ResponseFormat ResponseFormat
}

func (o Options) Validate() error {
	if strings.TrimSpace(o.Model) == "" {
		return &OptionsError{Field: "model", Reason: "must not be empty"}
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		return &OptionsError{Field: "temperature", Reason: fmt.Sprintf("%g is outside [0,2]", o.Temperature)}
	}
	if o.MaxTokens <= 0 {
		return &OptionsError{Field: "max_tokens", Reason: fmt.Sprintf("%d must be positive", o.MaxTokens)}
	}
	switch o.ResponseFormat {
	case FormatText, FormatJSON:
	default:
		return &OptionsError{Field: "response_format", Reason: fmt.Sprintf("%q is not text or json", o.ResponseFormat)}
	}
	return nil
}
