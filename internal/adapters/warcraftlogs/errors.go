package warcraftlogs

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel errors returned by the client.
var (
	ErrAuth            = errors.New("warcraftlogs: authorization failed")
	ErrNotFound        = errors.New("warcraftlogs: not found")
	ErrInvalidArgument = errors.New("warcraftlogs: invalid argument")
)

// APIError is a non-success response from the GraphQL endpoint, either an HTTP
// status other than 200 or a 200 carrying a GraphQL errors array.
type APIError struct {
	Operation  string
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	msg := http.StatusText(e.StatusCode)
	if len(e.Messages) > 0 {
		msg = strings.Join(e.Messages, "; ")
	}
	return fmt.Sprintf("warcraftlogs: %s failed (status %d): %s", e.Operation, e.StatusCode, msg)
}

// Is matches ErrAuth for a 401, which the API returns for an expired token.
func (e *APIError) Is(target error) bool {
	return target == ErrAuth && e.StatusCode == http.StatusUnauthorized
}

// Temporary reports whether a retry could succeed. A 401 is retried after the
// cached token is dropped.
func (e *APIError) Temporary() bool {
	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return e.StatusCode >= http.StatusInternalServerError
	}
}

// errorType classifies err for the errors_total metric.
func errorType(err error) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &apiErr):
		return "api"
	default:
		return "transport"
	}
}
