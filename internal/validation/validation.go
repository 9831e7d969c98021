// Package validation checks job payloads and request bodies against their
// validator struct tags and turns failures into field level errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/Naenyn/FeedbackPortlet/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by payloads that validate themselves.
type Validatable interface {
	Validate() error
}

// CustomValidationError covers rules that struct tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Struct validates s with the shared validator.
func Struct(s any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
	})
	return validate.Struct(s)
}

// ValidatePayload runs v.Validate and converts a failure into a 400.
func ValidatePayload(v Validatable) error {
	if err := v.Validate(); err != nil {
		msg, fieldErrors := extractValidationError(err)
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}
	return nil
}

// BindAndValidate binds the request into payload, which must be a pointer,
// and validates it.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		message := "Invalid request body"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			message = fmt.Sprint(he.Message)
		}
		return errs.NewBadRequestError(message, false, nil, nil)
	}

	return ValidatePayload(payload)
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customErrors CustomValidationErrors
	if errors.As(err, &customErrors) {
		for _, ce := range customErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: ce.Field, Error: ce.Message})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed: " + err.Error(), nil
	}

	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fe.Field(),
			Error: describe(fe),
		})
	}

	return "Validation failed", fieldErrors
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s items or characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must not exceed %s items or characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "gtefield", "gtfield":
		return fmt.Sprintf("must not be before %s", strings.ToLower(fe.Param()))
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
		}
		return fe.Tag()
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}
