package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/service"
)

// ListNotifications handles GET /v1/notifications?read=&limit=.
func (h *Handler) ListNotifications(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	read, err := optBool(c, "read")
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Notifications.ListMine(c.Request().Context(), identity(c), read, n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// UnreadNotifications handles GET /v1/notifications/unread-count.
func (h *Handler) UnreadNotifications(c echo.Context) error {
	n, err := h.Svc.Notifications.UnreadCount(c.Request().Context(), identity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// CreateNotification handles POST /v1/notifications (staff only).
func (h *Handler) CreateNotification(c echo.Context) error {
	var body struct {
		UserID    string                     `json:"userId"`
		Type      string                     `json:"type"`
		Title     string                     `json:"title"`
		Message   string                     `json:"message"`
		Data      map[string]any             `json:"data"`
		OrderID   string                     `json:"orderId"`
		StyleID   string                     `json:"styleId"`
		ActionURL string                     `json:"actionUrl"`
		Priority  model.NotificationPriority `json:"priority"`
		ExpiresAt *int64                     `json:"expiresAt"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	n, err := h.Svc.Notifications.Create(c.Request().Context(), identity(c), service.NotificationInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

// MarkNotificationRead handles PUT /v1/notifications/:id/read.
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	n, err := h.Svc.Notifications.MarkRead(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// MarkAllNotificationsRead handles PUT /v1/notifications/read-all.
func (h *Handler) MarkAllNotificationsRead(c echo.Context) error {
	changed, err := h.Svc.Notifications.MarkAllRead(c.Request().Context(), identity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": changed})
}

// DeleteNotification handles DELETE /v1/notifications/:id.
func (h *Handler) DeleteNotification(c echo.Context) error {
	if err := h.Svc.Notifications.Delete(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteReadNotifications handles DELETE /v1/notifications/read.
func (h *Handler) DeleteReadNotifications(c echo.Context) error {
	deleted, err := h.Svc.Notifications.DeleteRead(c.Request().Context(), identity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}
