package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/service"
)

// SyncAccount handles POST /v1/accounts/sync. It creates or refreshes the
// caller's account from the identity provider's profile.
func (h *Handler) SyncAccount(c echo.Context) error {
	var body struct {
		Phone  string `json:"phone"`
		Avatar string `json:"avatar"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	id := identity(c)
	p := service.ProfileSync{Phone: body.Phone, Avatar: body.Avatar}
	if id != nil {
		p.Email, p.Name = id.Email, id.Name
	}
	acc, err := h.Svc.Accounts.SyncIdentity(c.Request().Context(), id, p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, acc)
}

// Me handles GET /v1/me.
func (h *Handler) Me(c echo.Context) error {
	acc, err := h.Svc.Accounts.Me(c.Request().Context(), identity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, acc)
}

// UpdateProfile handles PATCH /v1/me.
func (h *Handler) UpdateProfile(c echo.Context) error {
	var body struct {
		Name   *string `json:"name"`
		Phone  *string `json:"phone"`
		Avatar *string `json:"avatar"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	acc, err := h.Svc.Accounts.UpdateProfile(c.Request().Context(), identity(c), service.ProfileUpdate(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, acc)
}

// UpdatePreferences handles PUT /v1/me/preferences.
func (h *Handler) UpdatePreferences(c echo.Context) error {
	var p model.Preferences
	if err := bind(c, &p); err != nil {
		return h.fail(c, err)
	}
	acc, err := h.Svc.Accounts.UpdatePreferences(c.Request().Context(), identity(c), p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, acc)
}

// SaveMeasurements handles PUT /v1/me/measurements with a name → value map.
func (h *Handler) SaveMeasurements(c echo.Context) error {
	var m map[string]float64
	if err := bind(c, &m); err != nil {
		return h.fail(c, err)
	}
	acc, err := h.Svc.Accounts.SaveMeasurements(c.Request().Context(), identity(c), m)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, acc)
}

// GetAccount handles GET /v1/accounts/:id.
func (h *Handler) GetAccount(c echo.Context) error {
	acc, err := h.Svc.Accounts.Get(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, acc)
}

// ListMembers handles GET /v1/tenants/:id/members?role=&limit=.
func (h *Handler) ListMembers(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Accounts.ListByTenant(c.Request().Context(), identity(c), c.Param("id"), optEnum[model.Role](c, "role"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// BindMember handles POST /v1/tenants/:id/members. It attaches an existing
// account, named by its identity provider subject, to the tenant.
func (h *Handler) BindMember(c echo.Context) error {
	var body struct {
		ExternalID string     `json:"externalId"`
		Role       model.Role `json:"role"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	acc, err := h.Svc.Accounts.BindMembership(c.Request().Context(), identity(c), body.ExternalID, c.Param("id"), body.Role)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, acc)
}
