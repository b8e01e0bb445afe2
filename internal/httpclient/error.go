package httpclient

import (
	goerrors "errors"
	"fmt"
	"net/http"

	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
)

// Error represents a non-2xx response from an upstream service
type Error struct {
	StatusCode int
	Response   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: upstream returned %d", ierr.ErrCodeHTTPClient, e.StatusCode)
}

// Is matches ErrHTTPClient for every status, and ErrUnavailable for 5xx and 429
func (e *Error) Is(target error) bool {
	switch target {
	case ierr.ErrHTTPClient:
		return true
	case ierr.ErrUnavailable:
		return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// NewError creates a new HTTP client error
func NewError(statusCode int, response []byte) *Error {
	return &Error{
		StatusCode: statusCode,
		Response:   response,
	}
}

// IsHTTPError checks if an error is an HTTP client error
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if goerrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
