package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/handler"
)

// RegisterAccounts registers the caller's own profile, account lookups,
// saved styles and invitation redemption.
func RegisterAccounts(g *echo.Group, h *handler.Handler) {
	g.POST("/accounts/sync", h.SyncAccount)
	g.GET("/me", h.Me)
	g.PATCH("/me", h.UpdateProfile)
	g.PUT("/me/preferences", h.UpdatePreferences)
	g.PUT("/me/measurements", h.SaveMeasurements)
	g.GET("/accounts/:id", h.GetAccount)

	g.GET("/accounts/:id/saved-styles", h.ListSavedStyles)
	g.POST("/accounts/:id/saved-styles", h.SaveStyle)
	g.DELETE("/accounts/:id/saved-styles/:styleId", h.UnsaveStyle)
	g.GET("/accounts/:id/orders", h.ListCustomerOrders)

	g.GET("/invitations/preview", h.PreviewInvitation)
	g.POST("/invitations/accept", h.AcceptInvitation)

	g.POST("/media", h.UploadMedia)
}

// RegisterTenants registers organisation management. Role and tenant
// checks happen in the services.
func RegisterTenants(g *echo.Group, h *handler.Handler) {
	g.POST("/tenants", h.CreateTenant)
	g.GET("/tenants/:id", h.GetTenant)
	g.PATCH("/tenants/:id", h.UpdateTenant)
	g.PUT("/tenants/:id/settings", h.UpdateTenantSettings)
	g.PUT("/tenants/:id/active", h.SetTenantActive)

	g.GET("/tenants/:id/members", h.ListMembers)
	g.POST("/tenants/:id/members", h.BindMember)
	g.GET("/tenants/:id/invitations", h.ListInvitations)
	g.POST("/invitations", h.CreateInvitation)
	g.DELETE("/invitations/:id", h.CancelInvitation)

	g.GET("/tenants/:id/styles", h.ListTenantStyles)
	g.GET("/tenants/:id/orders", h.ListTenantOrders)
	g.GET("/tenants/:id/reviews", h.ListTenantReviews)
	g.GET("/tenants/:id/audit", h.ListAudit)
}
