package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/handler"
)

// RegisterOrders registers the order lifecycle, production assignments and
// payments.
func RegisterOrders(g *echo.Group, h *handler.Handler) {
	g.POST("/orders", h.CreateOrder)
	g.GET("/orders/:id", h.GetOrder)
	g.GET("/orders/number/:number", h.GetOrderByNumber)
	g.PUT("/orders/:id/status", h.UpdateOrderStatus)
	g.POST("/orders/:id/progress", h.UpdateOrderProgress)
	g.PATCH("/orders/:id/delivery", h.UpdateOrderDelivery)
	g.POST("/orders/:id/rating", h.RateOrder)
	g.GET("/workers/:id/orders", h.ListWorkerOrders)

	g.POST("/assignments", h.CreateAssignment)
	g.PUT("/assignments/:id/status", h.UpdateAssignmentStatus)
	g.POST("/assignments/:id/progress", h.AddAssignmentProgress)
	g.GET("/orders/:id/assignments", h.ListOrderAssignments)
	g.GET("/workers/:id/assignments", h.ListWorkerAssignments)
	g.GET("/managers/:id/assignments", h.ListManagerAssignments)

	g.POST("/orders/:id/checkout", h.InitializePayment)
	g.GET("/orders/:id/payments", h.ListOrderPayments)
	g.POST("/payments", h.CreatePayment)
	g.GET("/payments/:ref", h.GetPayment)
	g.PUT("/payments/:ref/status", h.UpdatePaymentStatus)
	g.POST("/payments/:ref/verify", h.VerifyPayment)
}
