package tracker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/google/go-github/v66/github"
)

// APIError is a rejection by the GitHub API.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("github %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("github %s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// NetworkError means the GitHub API could not be reached.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("github %s: unreachable: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		respErr  *github.ErrorResponse
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		urlErr   *url.Error
		netErr   net.Error
	)
	switch {
	case errors.As(err, &respErr):
		return &APIError{Op: op, StatusCode: statusOf(respErr.Response), Message: respErr.Message, Err: err}
	case errors.As(err, &rateErr):
		return &APIError{Op: op, StatusCode: statusOf(rateErr.Response), Message: rateErr.Message, Err: err}
	case errors.As(err, &abuseErr):
		return &APIError{Op: op, StatusCode: statusOf(abuseErr.Response), Message: abuseErr.Message, Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &urlErr), errors.As(err, &netErr):
		return &NetworkError{Op: op, Err: err}
	default:
		return &APIError{Op: op, Message: err.Error(), Err: err}
	}
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
