package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/service"
)

// CreateAssignment handles POST /v1/assignments.
func (h *Handler) CreateAssignment(c echo.Context) error {
	var body struct {
		OrderID           string         `json:"orderId"`
		WorkerID          string         `json:"workerId"`
		Stage             model.Stage    `json:"stage"`
		Priority          model.Priority `json:"priority"`
		Notes             string         `json:"notes"`
		EstimatedDuration *int64         `json:"estimatedDuration"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	a, err := h.Svc.Assignments.Create(c.Request().Context(), identity(c), service.AssignmentInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// UpdateAssignmentStatus handles PUT /v1/assignments/:id/status.
func (h *Handler) UpdateAssignmentStatus(c echo.Context) error {
	var body struct {
		Status model.AssignmentStatus `json:"status"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	a, err := h.Svc.Assignments.UpdateStatus(c.Request().Context(), identity(c), c.Param("id"), body.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// AddAssignmentProgress handles POST /v1/assignments/:id/progress.
func (h *Handler) AddAssignmentProgress(c echo.Context) error {
	var body struct {
		Message string   `json:"message"`
		Images  []string `json:"images"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	a, err := h.Svc.Assignments.AddProgressUpdate(c.Request().Context(), identity(c), c.Param("id"), body.Message, body.Images)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// ListWorkerAssignments handles GET /v1/workers/:id/assignments?status=&limit=.
func (h *Handler) ListWorkerAssignments(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Assignments.ListByWorker(c.Request().Context(), identity(c), c.Param("id"), optEnum[model.AssignmentStatus](c, "status"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListOrderAssignments handles GET /v1/orders/:id/assignments.
func (h *Handler) ListOrderAssignments(c echo.Context) error {
	list, err := h.Svc.Assignments.ListByOrder(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListManagerAssignments handles GET /v1/managers/:id/assignments?limit=.
func (h *Handler) ListManagerAssignments(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Assignments.ListByManager(c.Request().Context(), identity(c), c.Param("id"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
