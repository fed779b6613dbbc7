// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/config"
	"github.com/iliyamo/stylehub/internal/handler"
	"github.com/iliyamo/stylehub/internal/middleware"
	"github.com/iliyamo/stylehub/internal/obs"
)

// Options carries what the routes need besides the handler. Redis may be
// nil, which disables the edge limiter and the cache.
type Options struct {
	IdentitySecret string
	RateLimit      config.RateLimitConfig
	Cache          config.CacheConfig
	Redis          *redis.Client
	Logger         *zap.Logger
}

// New builds the echo instance with every route registered.
func New(h *handler.Handler, opts Options) *echo.Echo {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(opts.Logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.Observe(opts.Logger))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("12M"))

	RegisterRoutes(e, h)

	limit := middleware.NewFixedWindow(opts.RateLimit, opts.Redis, opts.Logger, nil)
	cache := middleware.NewRedisCache(opts.Cache, opts.Redis)

	public := e.Group("/v1", middleware.OptionalIdentityJWT(opts.IdentitySecret), limit)
	RegisterPublic(public, h, cache)

	authed := e.Group("/v1", middleware.IdentityJWT(opts.IdentitySecret), limit)
	RegisterAccounts(authed, h)
	RegisterTenants(authed, h)
	RegisterCatalog(authed, h)
	RegisterOrders(authed, h)
	RegisterMessaging(authed, h)
	return e
}

// RegisterRoutes registers the unauthenticated operational endpoints and
// the payment webhook, which authenticates with its own shared secret.
func RegisterRoutes(e *echo.Echo, h *handler.Handler) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(obs.Handler()))
	e.POST("/webhooks/payments", h.PaymentWebhook)
}

// RegisterPublic registers the catalogue reads anonymous visitors may use.
// Listing endpoints go through the response cache.
func RegisterPublic(g *echo.Group, h *handler.Handler, cache echo.MiddlewareFunc) {
	g.GET("/styles", h.ListStyles, cache)
	g.GET("/styles/:id", h.GetStyle)
	g.POST("/styles/:id/views", h.RecordStyleView)
	g.GET("/tenants", h.ListTenants, cache)
	g.GET("/tenants/slug/:slug", h.GetTenantBySlug, cache)
	g.GET("/workers/:id/portfolio/public", h.ListPublicPortfolio, cache)
}
