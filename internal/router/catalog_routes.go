package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/handler"
)

// RegisterCatalog registers style, review and portfolio management.
func RegisterCatalog(g *echo.Group, h *handler.Handler) {
	g.POST("/styles", h.CreateStyle)
	g.PATCH("/styles/:id", h.UpdateStyle)
	g.PUT("/styles/:id/images", h.UpdateStyleImages)
	g.DELETE("/styles/:id", h.DeleteStyle)
	g.GET("/styles/:id/saved", h.IsStyleSaved)
	g.GET("/styles/:id/reviews", h.ListStyleReviews)

	g.POST("/reviews", h.CreateReview)
	g.PUT("/reviews/:id/status", h.ModerateReview)
	g.POST("/reviews/:id/response", h.RespondToReview)

	g.POST("/portfolio", h.AddPortfolioItem)
	g.PATCH("/portfolio/:id", h.UpdatePortfolioItem)
	g.DELETE("/portfolio/:id", h.DeletePortfolioItem)
	g.GET("/workers/:id/portfolio", h.ListWorkerPortfolio)
}
