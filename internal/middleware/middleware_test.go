package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Naenyn/FeedbackPortlet/internal/config"
	"github.com/Naenyn/FeedbackPortlet/internal/errs"
	"github.com/Naenyn/FeedbackPortlet/internal/server"
	"github.com/Naenyn/FeedbackPortlet/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "local"},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	handler := RequestID()(func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))

		id := rec.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))

		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestEnhanceContext(t *testing.T) {
	e := echo.New()
	enhancer := NewContextEnhancer(testServer())

	handler := RequestID()(enhancer.EnhanceContext()(func(c echo.Context) error {
		assert.NotNil(t, GetLogger(c))
		assert.NotNil(t, zerolog.Ctx(c.Request().Context()))
		return nil
	}))

	require.NoError(t, handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), httptest.NewRecorder())))
}

func TestGetLogger_Fallback(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.NotNil(t, GetLogger(c))
}

func TestGlobalErrorHandler(t *testing.T) {
	global := NewGlobalMiddlewares(testServer())
	e := echo.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"http error", errs.NewBadRequestError("bad window", true, nil, nil), http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown route", echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"method not allowed", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"store not found", sqlerr.Wrap("store_feedback", sqlerr.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"store constraint", sqlerr.Wrap("store_feedback", &pgconn.PgError{Code: "23502", TableName: "feedback_items", ColumnName: "user_id"}), http.StatusBadRequest, "FEEDBACK_ITEM_REQUIRED"},
		{"unknown", fmt.Errorf("wrapped: %w", errors.New("boom")), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			global.GlobalErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body errs.HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantStatus, body.Status)
		})
	}
}

func TestNewRelicMiddleware_Disabled(t *testing.T) {
	tm := NewTracingMiddleware(testServer(), nil)
	called := false
	handler := tm.NewRelicMiddleware()(func(echo.Context) error {
		called = true
		return nil
	})

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.NoError(t, handler(c))
	assert.True(t, called)

	require.NoError(t, tm.EnhanceTracing()(func(echo.Context) error { return nil })(c))
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimitMiddleware(testServer()).Limit(0.001, 2)
	handler := limiter(func(c echo.Context) error {
		return c.NoContent(http.StatusAccepted)
	})
	e := echo.New()

	call := func(ip string) error {
		req := httptest.NewRequest(http.MethodPost, "/jobs/digest", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	require.NoError(t, call("10.0.0.1"))
	require.NoError(t, call("10.0.0.1"))

	err := call("10.0.0.1")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusTooManyRequests, he.Code)

	require.NoError(t, call("10.0.0.2"))
}
