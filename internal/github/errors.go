package github

import (
	"fmt"

	gh "github.com/google/go-github/v66/github"
)

// NetworkError reports a failure to get a usable response from the API:
// transport errors, non-2xx statuses, undecodable bodies and an open breaker.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github %s (%s): status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("github %s (%s): %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func newNetworkError(op, target string, resp *gh.Response, err error) *NetworkError {
	ne := &NetworkError{Op: op, URL: target, Err: err}
	if resp != nil && resp.Response != nil {
		ne.StatusCode = resp.StatusCode
		if resp.Request != nil {
			ne.URL = resp.Request.URL.String()
		}
	}
	return ne
}
