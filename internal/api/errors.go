package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/response"
)

// APIError is a non-2xx response from the remote API
type APIError struct {
	Status     int
	StatusText string
	// Message is the most specific message available: the first nested error,
	// then the top-level message, then a raw text body, then "<status> <text>".
	Message string
	Errors  []response.ErrorDetail
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	return e.Message
}

// newAPIError builds an APIError from a response body that may or may not be JSON
func newAPIError(status int, method, path string, body []byte) *APIError {
	e := &APIError{
		Status:     status,
		StatusText: http.StatusText(status),
		Method:     method,
		Path:       path,
	}

	var eb response.ErrorBody
	if err := decodeJSON(body, &eb); err == nil {
		e.Errors = eb.Errors
		for _, d := range eb.Errors {
			if d.Message != "" {
				e.Message = d.Message
				break
			}
		}
		if e.Message == "" {
			e.Message = eb.Message
		}
	} else if text := trimBody(body); text != "" {
		e.Message = text
	}

	if e.Message == "" {
		e.Message = fmt.Sprintf("%d %s", status, e.StatusText)
	}
	return e
}

// AsAPIError extracts an *APIError from err
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status of err, or 0 when err is not an APIError
func StatusCode(err error) int {
	if e, ok := AsAPIError(err); ok {
		return e.Status
	}
	return 0
}

// IsUnauthorized reports whether err means the user must log in again
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized || errors.Is(err, domain.ErrNotAuthenticated)
}

// IsForbidden reports a 403
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsNotFound reports a 404
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsConflict reports a 409
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}

// IsClientError reports a 4xx
func IsClientError(err error) bool {
	s := StatusCode(err)
	return s >= 400 && s < 500
}

// IsServerError reports a 5xx
func IsServerError(err error) bool {
	return StatusCode(err) >= 500
}

// IsCanceled reports whether err comes from an intentionally cancelled request.
// Timeouts are not cancellations.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsNetworkError reports a transport failure that produced no response
func IsNetworkError(err error) bool {
	if err == nil || IsCanceled(err) {
		return false
	}
	if _, ok := AsAPIError(err); ok {
		return false
	}
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr)
}

// UserMessage returns the text to show for err. fallback is used for server
// failures and for errors that carry nothing useful, such as transport failures.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if IsServerError(err) || IsNetworkError(err) || err.Error() == "" {
		return fallback
	}
	if e, ok := AsAPIError(err); ok {
		return e.Message
	}
	return err.Error()
}
