package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// callStatus captures what the HTTP layer saw during one provider call so the
// provider's opaque error can be classified afterwards.
type callStatus struct {
	statusCode int
	transport  error
}

type callStatusKey struct{}

func withCallStatus(ctx context.Context) (context.Context, *callStatus) {
	st := &callStatus{}
	return context.WithValue(ctx, callStatusKey{}, st), st
}

type recordingTransport struct {
	base http.RoundTripper
}

func (t recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if st, ok := req.Context().Value(callStatusKey{}).(*callStatus); ok {
		if err != nil {
			st.transport = err
		} else {
			st.statusCode = resp.StatusCode
		}
	}
	return resp, err
}

// instrumentHTTPClient returns a copy of c whose transport records call status.
func instrumentHTTPClient(c *http.Client) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone := *c
	clone.Transport = recordingTransport{base: base}
	return &clone
}

func classify(err error, st *callStatus, timeout time.Duration) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &NetworkError{Err: fmt.Errorf("call timed out after %s: %w", timeout, err)}
	case st.transport != nil:
		return &NetworkError{Err: err}
	case st.statusCode == http.StatusUnauthorized || st.statusCode == http.StatusForbidden:
		return &AuthError{StatusCode: st.statusCode, Err: err}
	case st.statusCode == 0:
		// no HTTP exchange happened (fake model or in-process failure)
		return &APIError{Err: err}
	default:
		return &APIError{StatusCode: st.statusCode, Err: err}
	}
}
