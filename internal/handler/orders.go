package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/service"
)

// CreateOrder handles POST /v1/orders on behalf of the calling customer.
func (h *Handler) CreateOrder(c echo.Context) error {
	var body struct {
		StyleID               string             `json:"styleId"`
		Measurements          map[string]float64 `json:"measurements"`
		AdditionalNotes       string             `json:"additionalNotes"`
		CustomizationRequests string             `json:"customizationRequests"`
		CustomizationFee      decimal.Decimal    `json:"customizationFee"`
		Delivery              model.Delivery     `json:"delivery"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	o, err := h.Svc.Orders.Create(c.Request().Context(), identity(c), service.OrderInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// GetOrder handles GET /v1/orders/:id.
func (h *Handler) GetOrder(c echo.Context) error {
	o, err := h.Svc.Orders.Get(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// GetOrderByNumber handles GET /v1/orders/number/:number.
func (h *Handler) GetOrderByNumber(c echo.Context) error {
	o, err := h.Svc.Orders.GetByNumber(c.Request().Context(), identity(c), c.Param("number"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// ListCustomerOrders handles GET /v1/accounts/:id/orders?status=&limit=.
func (h *Handler) ListCustomerOrders(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Orders.ListByCustomer(c.Request().Context(), identity(c), c.Param("id"), optEnum[model.OrderStatus](c, "status"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListTenantOrders handles GET /v1/tenants/:id/orders?status=&paymentStatus=&limit=.
func (h *Handler) ListTenantOrders(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	f := service.OrderFilter{
		Status:        optEnum[model.OrderStatus](c, "status"),
		PaymentStatus: optEnum[model.PaymentState](c, "paymentStatus"),
		Limit:         n,
	}
	list, err := h.Svc.Orders.ListByTenant(c.Request().Context(), identity(c), c.Param("id"), f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListWorkerOrders handles GET /v1/workers/:id/orders?status=&limit=.
func (h *Handler) ListWorkerOrders(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Orders.ListByWorker(c.Request().Context(), identity(c), c.Param("id"), optEnum[model.OrderStatus](c, "status"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// UpdateOrderStatus handles PUT /v1/orders/:id/status.
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	var body struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	o, err := h.Svc.Orders.UpdateStatus(c.Request().Context(), identity(c), c.Param("id"), body.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateOrderProgress handles POST /v1/orders/:id/progress.
func (h *Handler) UpdateOrderProgress(c echo.Context) error {
	var body struct {
		Stage  model.Stage       `json:"stage"`
		Status model.StageStatus `json:"status"`
		Notes  string            `json:"notes"`
		Images []string          `json:"images"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	o, err := h.Svc.Orders.UpdateProgress(c.Request().Context(), identity(c), c.Param("id"), service.ProgressInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateOrderDelivery handles PATCH /v1/orders/:id/delivery.
func (h *Handler) UpdateOrderDelivery(c echo.Context) error {
	var body struct {
		Status         *model.DeliveryStatus `json:"status"`
		TrackingNumber *string               `json:"trackingNumber"`
		CourierService *string               `json:"courierService"`
		EstimatedDate  *int64                `json:"estimatedDate"`
		Instructions   *string               `json:"instructions"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	o, err := h.Svc.Orders.UpdateDelivery(c.Request().Context(), identity(c), c.Param("id"), service.DeliveryUpdate(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// RateOrder handles POST /v1/orders/:id/rating.
func (h *Handler) RateOrder(c echo.Context) error {
	var body struct {
		Value  int      `json:"value"`
		Review string   `json:"review"`
		Images []string `json:"images"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	o, err := h.Svc.Orders.AttachRating(c.Request().Context(), identity(c), c.Param("id"), body.Value, body.Review, body.Images)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}
