package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Naenyn/FeedbackPortlet/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	UserID     string   `json:"user_id" validate:"required"`
	Window     int      `json:"window_hours" validate:"min=1,max=720"`
	Recipients []string `json:"recipients" validate:"dive,email"`
}

func (p *samplePayload) Validate() error {
	return Struct(p)
}

type customPayload struct{}

func (customPayload) Validate() error {
	return CustomValidationErrors{{Field: "range", Message: "end before start"}}
}

func TestValidatePayload(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidatePayload(&samplePayload{UserID: "u1", Window: 24}))
	})

	t.Run("field errors use json names", func(t *testing.T) {
		err := ValidatePayload(&samplePayload{Window: 0, Recipients: []string{"not-an-email"}})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)

		fields := map[string]string{}
		for _, fe := range httpErr.Errors {
			fields[fe.Field] = fe.Error
		}
		assert.Equal(t, "is required", fields["user_id"])
		assert.Equal(t, "must be at least 1", fields["window_hours"])
		assert.Equal(t, "must be a valid email address", fields["recipients[0]"])
	})

	t.Run("custom errors", func(t *testing.T) {
		var httpErr *errs.HTTPError
		require.ErrorAs(t, ValidatePayload(customPayload{}), &httpErr)
		assert.Equal(t, []errs.FieldError{{Field: "range", Error: "end before start"}}, httpErr.Errors)
	})
}

func TestBindAndValidate(t *testing.T) {
	e := echo.New()

	t.Run("binds json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":"u1","window_hours":12}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		var p samplePayload
		require.NoError(t, BindAndValidate(c, &p))
		assert.Equal(t, "u1", p.UserID)
		assert.Equal(t, 12, p.Window)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		var httpErr *errs.HTTPError
		require.ErrorAs(t, BindAndValidate(c, &samplePayload{}), &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	})
}
