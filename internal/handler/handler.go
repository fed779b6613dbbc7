// Package handler exposes the domain services over HTTP. Handlers only
// decode input, pass the caller's identity through and encode the result;
// every access decision is made by the services.
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/middleware"
	"github.com/iliyamo/stylehub/internal/service"
)

// Handler bundles the services behind the /v1 API.
type Handler struct {
	Svc    *service.Services
	Logger *zap.Logger
	// WebhookHash is the shared secret the payment gateway sends in verif-hash.
	WebhookHash string
}

// NewHandler constructs a Handler and panics if svc is nil.
func NewHandler(svc *service.Services, logger *zap.Logger, webhookHash string) *Handler {
	if svc == nil {
		panic("nil services passed to NewHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Svc: svc, Logger: logger, WebhookHash: webhookHash}
}

func identity(c echo.Context) *auth.Identity {
	return middleware.Identity(c)
}

// bind decodes the request body into v.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apperr.Invalid("invalid request body")
	}
	return nil
}

// limit reads ?limit=, returning 0 (the service default) when absent.
func limit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Invalid("invalid limit")
	}
	return n, nil
}

// optBool reads an optional boolean query parameter.
func optBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Invalid("invalid %s", name)
	}
	return &b, nil
}

// optEnum reads an optional string-typed query parameter such as ?status=.
func optEnum[T ~string](c echo.Context, name string) *T {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v := T(raw)
	return &v
}
