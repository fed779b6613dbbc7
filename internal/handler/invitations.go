package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/service"
)

// CreateInvitation handles POST /v1/invitations. The invitee receives the
// token by e-mail only; it is never returned here.
func (h *Handler) CreateInvitation(c echo.Context) error {
	var body struct {
		TenantID string     `json:"tenantId"`
		Email    string     `json:"email"`
		Role     model.Role `json:"role"`
		Message  string     `json:"message"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	inv, err := h.Svc.Invitations.Create(c.Request().Context(), identity(c), service.InvitationInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, inv)
}

// AcceptInvitation handles POST /v1/invitations/accept.
func (h *Handler) AcceptInvitation(c echo.Context) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	inv, err := h.Svc.Invitations.Accept(c.Request().Context(), identity(c), body.Token)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, inv)
}

// PreviewInvitation handles GET /v1/invitations/preview?token=.
func (h *Handler) PreviewInvitation(c echo.Context) error {
	p, err := h.Svc.Invitations.Preview(c.Request().Context(), identity(c), c.QueryParam("token"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// CancelInvitation handles DELETE /v1/invitations/:id.
func (h *Handler) CancelInvitation(c echo.Context) error {
	inv, err := h.Svc.Invitations.Cancel(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, inv)
}

// ListInvitations handles GET /v1/tenants/:id/invitations?status=&limit=.
func (h *Handler) ListInvitations(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Invitations.ListByTenant(c.Request().Context(), identity(c), c.Param("id"), optEnum[model.InvitationStatus](c, "status"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
