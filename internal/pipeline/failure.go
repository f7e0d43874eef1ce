package pipeline

import (
	"errors"
	"strings"

	"github.com/roivaz/issue-analyzer/internal/analysis"
	"github.com/roivaz/issue-analyzer/internal/config"
	"github.com/roivaz/issue-analyzer/internal/llm"
	"github.com/roivaz/issue-analyzer/internal/prompt"
	"github.com/roivaz/issue-analyzer/internal/tracker"
)

type FailureCategory string

const (
	FailureCategoryConfig          FailureCategory = "config"
	FailureCategoryNetwork         FailureCategory = "network"
	FailureCategoryAuth            FailureCategory = "auth"
	FailureCategoryMalformedOutput FailureCategory = "malformed_output"
	FailureCategorySchemaViolation FailureCategory = "schema_violation"
	FailureCategoryExternalAPI     FailureCategory = "external_api"
	FailureCategoryError           FailureCategory = "error"
)

// GetFailureDetails returns a one-line reason and the category of err.
func GetFailureDetails(err error) (reason string, category FailureCategory) {
	if err == nil {
		return "", ""
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "unknown failure"
	}
	return msg, Classify(err)
}

func Classify(err error) FailureCategory {
	var (
		cfgErr     *config.Error
		notFound   *prompt.NotFoundError
		missing    *prompt.MissingPlaceholderError
		syntax     *prompt.SyntaxError
		optErr     *llm.OptionsError
		llmNet     *llm.NetworkError
		trackerNet *tracker.NetworkError
		authErr    *llm.AuthError
		malformed  *analysis.MalformedOutputError
		violation  *analysis.SchemaViolationError
		trackerAPI *tracker.APIError
		llmAPI     *llm.APIError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr), errors.As(err, &notFound), errors.As(err, &missing),
		errors.As(err, &syntax), errors.As(err, &optErr):
		return FailureCategoryConfig
	case errors.As(err, &authErr):
		return FailureCategoryAuth
	case errors.As(err, &llmNet), errors.As(err, &trackerNet):
		return FailureCategoryNetwork
	case errors.As(err, &malformed):
		return FailureCategoryMalformedOutput
	case errors.As(err, &violation):
		return FailureCategorySchemaViolation
	case errors.As(err, &trackerAPI), errors.As(err, &llmAPI), errors.Is(err, llm.ErrEmptyCompletion):
		return FailureCategoryExternalAPI
	default:
		return FailureCategoryError
	}
}
