package errs

import (
	"net/http"
)

func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewBadRequestError builds a 400. A nil code defaults to BAD_REQUEST.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError) *HTTPError {
	formattedCode := statusCode(http.StatusBadRequest)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
	}
}

// NewNotFoundError builds a 404. A nil code defaults to NOT_FOUND.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusNotFound)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewServiceUnavailableError builds a 503, used when a dependency such as the
// database is temporarily unreachable.
func NewServiceUnavailableError(message string) *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusServiceUnavailable),
		Message:  message,
		Status:   http.StatusServiceUnavailable,
		Override: false,
	}
}

// NewInternalServerError never carries the underlying cause.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusInternalServerError),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ValidationError wraps a validator failure into a 400 listing the offending fields.
func ValidationError(err error, fields []FieldError) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, fields)
}
