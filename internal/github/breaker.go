package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var errServerStatus = errors.New("server error status")

// callerCanceledError wraps a round trip aborted because the request's
// context was canceled. It says nothing about GitHub's health.
type callerCanceledError struct {
	err error
}

func (e *callerCanceledError) Error() string { return e.err.Error() }
func (e *callerCanceledError) Unwrap() error { return e.err }

// breakerTransport fails fast once consecutive transport errors or 5xx
// responses reach the threshold. Client errors (4xx) and requests canceled
// by the caller never trip it.
type breakerTransport struct {
	cb   *gobreaker.CircuitBreaker
	next http.RoundTripper
}

func newBreakerTransport(next http.RoundTripper, failures uint32, cooldown time.Duration, logger *slog.Logger) *breakerTransport {
	if failures == 0 {
		failures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "github",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			var canceled *callerCanceledError
			return err == nil || errors.As(err, &canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &breakerTransport{cb: cb, next: next}
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out, err := t.cb.Execute(func() (any, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			// Client timeouts surface as DeadlineExceeded and still count.
			if errors.Is(req.Context().Err(), context.Canceled) {
				return nil, &callerCanceledError{err: err}
			}
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})
	var canceled *callerCanceledError
	if errors.As(err, &canceled) {
		return nil, canceled.err
	}
	if err != nil && !errors.Is(err, errServerStatus) {
		return nil, err
	}
	return out.(*http.Response), nil
}
