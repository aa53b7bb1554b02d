package httpclient

import (
	goerrors "errors"

	ierr "github.com/flexprice/plancatalog/internal/errors"
)

// Error represents a non-2xx answer from the remote end
type Error struct {
	err        error
	StatusCode int
	Response   []byte
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Error() string {
	return e.err.Error()
}

// NewError creates a new HTTP client error marked as ErrHTTPClient
func NewError(statusCode int, response []byte) *Error {
	return &Error{
		err: ierr.NewErrorf("remote answered with status %d", statusCode).
			WithHint("Webhook endpoint rejected the request").
			WithReportableDetails(map[string]any{"status_code": statusCode}).
			Mark(ierr.ErrHTTPClient),
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
