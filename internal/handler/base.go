package handler

import (
	"time"

	"github.com/Naenyn/FeedbackPortlet/internal/middleware"
	"github.com/Naenyn/FeedbackPortlet/internal/server"
	"github.com/Naenyn/FeedbackPortlet/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint. Req is normally a pointer so it can be bound.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// handleRequest binds and validates req, runs handler and writes its result
// as JSON with status, recording timings on the New Relic transaction.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	status int,
	handler func(c echo.Context, req Req) (any, error),
) error {
	start := time.Now()
	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", c.Path())
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", "handler").
		Str("route", c.Path()).
		Logger()

	logger.Info().Msg("handling request")

	if err := validation.BindAndValidate(c, req); err != nil {
		logger.Error().Err(err).Dur("validation_duration", time.Since(start)).Msg("request validation failed")
		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
		}
		return err
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")
		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return c.JSON(status, result)
}

// Handle adapts a typed endpoint into an echo.HandlerFunc. newReq must
// return a fresh request value on every call.
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	newReq func() Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newReq(), status, func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		})
	}
}
