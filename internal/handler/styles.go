package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/service"
)

// ListStyles handles GET /v1/styles, the public catalogue. Query
// parameters: q, featured, category, gender, minPrice, maxPrice, sort, limit.
func (h *Handler) ListStyles(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	featured, err := optBool(c, "featured")
	if err != nil {
		return h.fail(c, err)
	}
	q := service.StyleQuery{
		Search:   c.QueryParam("q"),
		Featured: featured != nil && *featured,
		Category: c.QueryParam("category"),
		Gender:   model.Gender(c.QueryParam("gender")),
		Sort:     c.QueryParam("sort"),
		Limit:    n,
	}
	if q.MinPrice, err = optDecimal(c, "minPrice"); err != nil {
		return h.fail(c, err)
	}
	if q.MaxPrice, err = optDecimal(c, "maxPrice"); err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Styles.ListActive(c.Request().Context(), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func optDecimal(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.Invalid("invalid %s", name)
	}
	return &d, nil
}

// GetStyle handles GET /v1/styles/:id. Anonymous callers see active styles.
func (h *Handler) GetStyle(c echo.Context) error {
	st, err := h.Svc.Styles.Get(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// RecordStyleView handles POST /v1/styles/:id/views.
func (h *Handler) RecordStyleView(c echo.Context) error {
	if err := h.Svc.Styles.RecordView(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTenantStyles handles GET /v1/tenants/:id/styles?active=&limit=.
func (h *Handler) ListTenantStyles(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	active, err := optBool(c, "active")
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Styles.ListByTenant(c.Request().Context(), identity(c), c.Param("id"), active, n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// CreateStyle handles POST /v1/styles.
func (h *Handler) CreateStyle(c echo.Context) error {
	var body struct {
		TenantID     string               `json:"tenantId"`
		Title        string               `json:"title"`
		Description  string               `json:"description"`
		Category     string               `json:"category"`
		SubCategory  string               `json:"subCategory"`
		Gender       model.Gender         `json:"gender"`
		Images       []model.Image        `json:"images"`
		BasePrice    decimal.Decimal      `json:"basePrice"`
		Currency     string               `json:"currency"`
		IsNegotiable bool                 `json:"isNegotiable"`
		Measurements model.MeasurementSet `json:"measurements"`
		Tags         []string             `json:"tags"`
		IsFeatured   bool                 `json:"isFeatured"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	st, err := h.Svc.Styles.Create(c.Request().Context(), identity(c), service.StyleInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, st)
}

// UpdateStyle handles PATCH /v1/styles/:id.
func (h *Handler) UpdateStyle(c echo.Context) error {
	var body struct {
		Title        *string               `json:"title"`
		Description  *string               `json:"description"`
		Category     *string               `json:"category"`
		SubCategory  *string               `json:"subCategory"`
		Gender       *model.Gender         `json:"gender"`
		BasePrice    *decimal.Decimal      `json:"basePrice"`
		Currency     *string               `json:"currency"`
		IsNegotiable *bool                 `json:"isNegotiable"`
		Measurements *model.MeasurementSet `json:"measurements"`
		Tags         *[]string             `json:"tags"`
		IsActive     *bool                 `json:"isActive"`
		IsFeatured   *bool                 `json:"isFeatured"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	st, err := h.Svc.Styles.Update(c.Request().Context(), identity(c), c.Param("id"), service.StyleUpdate(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// UpdateStyleImages handles PUT /v1/styles/:id/images.
func (h *Handler) UpdateStyleImages(c echo.Context) error {
	var body struct {
		Images []model.Image `json:"images"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	st, err := h.Svc.Styles.UpdateImages(c.Request().Context(), identity(c), c.Param("id"), body.Images)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// DeleteStyle handles DELETE /v1/styles/:id.
func (h *Handler) DeleteStyle(c echo.Context) error {
	if err := h.Svc.Styles.Delete(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SaveStyle handles POST /v1/accounts/:id/saved-styles.
func (h *Handler) SaveStyle(c echo.Context) error {
	var body struct {
		StyleID string `json:"styleId"`
		Notes   string `json:"notes"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	saved, err := h.Svc.SavedStyles.Save(c.Request().Context(), identity(c), c.Param("id"), body.StyleID, body.Notes)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, saved)
}

// UnsaveStyle handles DELETE /v1/accounts/:id/saved-styles/:styleId.
func (h *Handler) UnsaveStyle(c echo.Context) error {
	if err := h.Svc.SavedStyles.Unsave(c.Request().Context(), identity(c), c.Param("id"), c.Param("styleId")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSavedStyles handles GET /v1/accounts/:id/saved-styles.
func (h *Handler) ListSavedStyles(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.SavedStyles.ListByUser(c.Request().Context(), identity(c), c.Param("id"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// IsStyleSaved handles GET /v1/styles/:id/saved for the caller.
func (h *Handler) IsStyleSaved(c echo.Context) error {
	ok, err := h.Svc.SavedStyles.IsSaved(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"saved": ok})
}
