package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/service"
)

// CreateTenant handles POST /v1/tenants. The caller becomes its org admin.
func (h *Handler) CreateTenant(c echo.Context) error {
	var body struct {
		Name          string        `json:"name"`
		Slug          string        `json:"slug"`
		ExternalOrgID string        `json:"externalOrgId"`
		Description   string        `json:"description"`
		Tagline       string        `json:"tagline"`
		Logo          string        `json:"logo"`
		Address       model.Address `json:"address"`
		Phone         string        `json:"phone"`
		Email         string        `json:"email"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	t, err := h.Svc.Tenants.Create(c.Request().Context(), identity(c), service.TenantInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// GetTenant handles GET /v1/tenants/:id.
func (h *Handler) GetTenant(c echo.Context) error {
	t, err := h.Svc.Tenants.Get(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// GetTenantBySlug handles GET /v1/tenants/slug/:slug.
func (h *Handler) GetTenantBySlug(c echo.Context) error {
	t, err := h.Svc.Tenants.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// ListTenants handles GET /v1/tenants.
func (h *Handler) ListTenants(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Tenants.ListActive(c.Request().Context(), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// UpdateTenant handles PATCH /v1/tenants/:id.
func (h *Handler) UpdateTenant(c echo.Context) error {
	var body struct {
		Name        *string        `json:"name"`
		Description *string        `json:"description"`
		Tagline     *string        `json:"tagline"`
		Logo        *string        `json:"logo"`
		CoverImage  *string        `json:"coverImage"`
		Address     *model.Address `json:"address"`
		Phone       *string        `json:"phone"`
		Email       *string        `json:"email"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	t, err := h.Svc.Tenants.Update(c.Request().Context(), identity(c), c.Param("id"), service.TenantUpdate(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateTenantSettings handles PUT /v1/tenants/:id/settings.
func (h *Handler) UpdateTenantSettings(c echo.Context) error {
	var st model.TenantSettings
	if err := bind(c, &st); err != nil {
		return h.fail(c, err)
	}
	t, err := h.Svc.Tenants.UpdateSettings(c.Request().Context(), identity(c), c.Param("id"), st)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// SetTenantActive handles PUT /v1/tenants/:id/active.
func (h *Handler) SetTenantActive(c echo.Context) error {
	var body struct {
		Active bool `json:"active"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	t, err := h.Svc.Tenants.SetActive(c.Request().Context(), identity(c), c.Param("id"), body.Active)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// ListAudit handles GET /v1/tenants/:id/audit?action=&limit=.
func (h *Handler) ListAudit(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Audit.List(c.Request().Context(), identity(c), c.Param("id"), c.QueryParam("action"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
