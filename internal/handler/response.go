package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/gym-booking/internal/repository"
)

const msgServerError = "Database or server error"

// Base carries what every handler needs: a logger and the per-request
// store deadline.
type Base struct {
	Log     *logrus.Logger
	Timeout time.Duration
}

func (b Base) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	d := b.Timeout
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), d)
}

// success writes {status: "success", message, ...payload}.
func success(c echo.Context, code int, msg string, payload echo.Map) error {
	body := echo.Map{"status": "success", "message": msg}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(code, body)
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"status": "error", "message": msg})
}

// storeError maps a repository error onto the response.  notFound is the
// message used for ErrNotFound.  Unexpected failures are logged with the
// operation and request id and reported opaquely.
func (b Base) storeError(c echo.Context, op string, err error, notFound string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, notFound)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return fail(c, http.StatusConflict, "Email has already been used")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "Insufficient privilege")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "Record is still referenced by other records")
	}

	fields := logrus.Fields{
		"op":         op,
		"route":      c.Path(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	}
	var pe *repository.PersistenceError
	if errors.As(err, &pe) {
		fields["store_op"] = pe.Op
	}
	b.Log.WithError(err).WithFields(fields).Error("request failed")
	return fail(c, http.StatusInternalServerError, msgServerError)
}

// paramID parses the :id path parameter as a positive integer.
func paramID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func badID(c echo.Context) error {
	return fail(c, http.StatusBadRequest, "Invalid id")
}

// ErrorHandler renders errors that escape a handler in the response
// envelope.  Messages already shaped as an envelope pass through.
func ErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		var body interface{} = echo.Map{"status": "error", "message": msgServerError}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case echo.Map:
				body = m
			case string:
				body = echo.Map{"status": "error", "message": m}
			default:
				body = echo.Map{"status": "error", "message": http.StatusText(code)}
			}
		} else {
			log.WithError(err).WithFields(logrus.Fields{
				"route":      c.Path(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Error("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.WithError(err).Warn("write error response")
		}
	}
}
