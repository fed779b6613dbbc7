package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/apperr"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindUnauthenticated: http.StatusUnauthorized,
	apperr.KindAccountNotFound: http.StatusUnauthorized,
	apperr.KindForbidden:       http.StatusForbidden,
	apperr.KindCrossTenant:     http.StatusForbidden,
	apperr.KindNotFound:        http.StatusNotFound,
	apperr.KindRateLimited:     http.StatusTooManyRequests,
	apperr.KindConflict:        http.StatusConflict,
	apperr.KindUpstream:        http.StatusBadGateway,
	apperr.KindInvalid:         http.StatusBadRequest,
}

// StatusOf maps an error kind to its HTTP status; unknown errors are 500.
func StatusOf(err error) int {
	if code, ok := statusByKind[apperr.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": kind, "message": text}. Errors without a
// kind are logged and reported as a generic internal error.
func (h *Handler) fail(c echo.Context, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		code := StatusOf(err)
		if code == http.StatusBadGateway {
			h.Logger.Warn("upstream failure", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.JSON(code, echo.Map{"error": string(ae.Kind), "message": message(ae)})
	}
	h.Logger.Error("request failed", zap.String("method", c.Request().Method), zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "internal server error"})
}

// message hides the cause of upstream failures from clients.
func message(e *apperr.Error) string {
	if e.Kind == apperr.KindUpstream {
		return e.Msg
	}
	return e.Error()
}

// ErrorHandler renders errors that escape handlers, such as echo's own 404
// and 405, in the same shape as domain errors.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, _ := he.Message.(string)
			if msg == "" {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, echo.Map{"error": kindForStatus(he.Code), "message": msg})
			return
		}
		h := &Handler{Logger: logger}
		_ = h.fail(c, err)
	}
}

func kindForStatus(code int) string {
	switch code {
	case http.StatusNotFound:
		return string(apperr.KindNotFound)
	case http.StatusUnauthorized:
		return string(apperr.KindUnauthenticated)
	case http.StatusForbidden:
		return string(apperr.KindForbidden)
	case http.StatusTooManyRequests:
		return string(apperr.KindRateLimited)
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return string(apperr.KindInvalid)
	}
	return "internal"
}
