package errs

import "strings"

// FieldError is a validation failure tied to a single input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is serialized as-is to API clients.
//
// Override tells the global error handler that Message is safe to show
// verbatim; otherwise the handler may replace it.
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError regardless of its fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e carrying message.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	cp := *e
	cp.Message = message
	return &cp
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
