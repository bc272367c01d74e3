package bankingclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds, matched through errors.Is. A 404 matches both ErrNotFound and
// ErrRejected. Failing to encode the request body matches none of them.
var (
	// ErrTransport covers connection failures, DNS failures and timeouts.
	ErrTransport = errors.New("banking api transport failure")
	// ErrUnauthorized is returned for 401/403 responses and token provider failures.
	ErrUnauthorized = errors.New("banking api authentication failed")
	// ErrRejected is a business failure reported by the backend with a 4xx or a
	// success:false envelope, such as a wrong OTP or an expired transfer.
	ErrRejected = errors.New("banking api rejected the request")
	// ErrServer is a 5xx or 408 answer. The backend may or may not have applied the
	// request, so callers should re-read state before retrying a write.
	ErrServer = errors.New("banking api server failure")
	// ErrNotFound is a rejection with HTTP 404. It also matches ErrRejected.
	ErrNotFound = errors.New("banking api resource not found")
	// ErrMalformedResponse means the backend answered 2xx with a body the client could not interpret.
	ErrMalformedResponse = errors.New("banking api returned a malformed response")
)

// APIError is a non-success answer from the banking backend. The message is relayed
// verbatim from the response body when one is present.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("banking api error: op=%s status=%d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("banking api error: op=%s status=%d", e.Op, e.StatusCode)
}

// Unwrap maps the HTTP status onto a failure kind.
func (e *APIError) Unwrap() []error {
	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return []error{ErrUnauthorized}
	case e.StatusCode == http.StatusNotFound:
		return []error{ErrNotFound, ErrRejected}
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode >= http.StatusInternalServerError:
		return []error{ErrServer}
	default:
		return []error{ErrRejected}
	}
}

// IsNotFound reports whether err is an HTTP 404 from the backend.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func malformed(op, reason string) error {
	return fmt.Errorf("%w: op=%s: %s", ErrMalformedResponse, op, reason)
}
