package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/service"
)

// CreateHuddle handles POST /v1/huddles.
func (h *Handler) CreateHuddle(c echo.Context) error {
	var body struct {
		RoomName     string           `json:"roomName"`
		OrderID      string           `json:"orderId"`
		Participants []string         `json:"participants"`
		Type         model.HuddleType `json:"type"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	hd, err := h.Svc.Huddles.Create(c.Request().Context(), identity(c), service.HuddleInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, hd)
}

// EndHuddle handles PUT /v1/huddles/:id/end.
func (h *Handler) EndHuddle(c echo.Context) error {
	hd, err := h.Svc.Huddles.End(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, hd)
}

// ListOrderHuddles handles GET /v1/orders/:id/huddles?status=.
func (h *Handler) ListOrderHuddles(c echo.Context) error {
	list, err := h.Svc.Huddles.ListByOrder(c.Request().Context(), identity(c), c.Param("id"), optEnum[model.HuddleStatus](c, "status"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// CreateReview handles POST /v1/reviews.
func (h *Handler) CreateReview(c echo.Context) error {
	var body struct {
		OrderID string   `json:"orderId"`
		Rating  int      `json:"rating"`
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Images  []string `json:"images"`
		Pros    []string `json:"pros"`
		Cons    []string `json:"cons"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	r, err := h.Svc.Reviews.Create(c.Request().Context(), identity(c), service.ReviewInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// ModerateReview handles PUT /v1/reviews/:id/status.
func (h *Handler) ModerateReview(c echo.Context) error {
	var body struct {
		Status model.ReviewStatus `json:"status"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	r, err := h.Svc.Reviews.UpdateStatus(c.Request().Context(), identity(c), c.Param("id"), body.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// RespondToReview handles POST /v1/reviews/:id/response.
func (h *Handler) RespondToReview(c echo.Context) error {
	var body struct {
		Content string `json:"content"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	r, err := h.Svc.Reviews.Respond(c.Request().Context(), identity(c), c.Param("id"), body.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// ListTenantReviews handles GET /v1/tenants/:id/reviews?status=&limit=.
func (h *Handler) ListTenantReviews(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Reviews.ListByTenant(c.Request().Context(), identity(c), c.Param("id"), optEnum[model.ReviewStatus](c, "status"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListStyleReviews handles GET /v1/styles/:id/reviews?status=&limit=.
func (h *Handler) ListStyleReviews(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Reviews.ListByStyle(c.Request().Context(), identity(c), c.Param("id"), optEnum[model.ReviewStatus](c, "status"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
