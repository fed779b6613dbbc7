package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/service"
)

// maxUploadBytes bounds a single media upload.
const maxUploadBytes = 10 << 20

// AddPortfolioItem handles POST /v1/portfolio.
func (h *Handler) AddPortfolioItem(c echo.Context) error {
	var body struct {
		WorkerID    string        `json:"workerId"`
		OrderID     string        `json:"orderId"`
		Title       string        `json:"title"`
		Description string        `json:"description"`
		Images      []model.Image `json:"images"`
		Category    string        `json:"category"`
		Tags        []string      `json:"tags"`
		IsPublic    bool          `json:"isPublic"`
		IsFeatured  bool          `json:"isFeatured"`
		CompletedAt int64         `json:"completedAt"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	item, err := h.Svc.Portfolio.Add(c.Request().Context(), identity(c), service.PortfolioInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// UpdatePortfolioItem handles PATCH /v1/portfolio/:id.
func (h *Handler) UpdatePortfolioItem(c echo.Context) error {
	var body struct {
		Title       *string        `json:"title"`
		Description *string        `json:"description"`
		Images      *[]model.Image `json:"images"`
		Category    *string        `json:"category"`
		Tags        *[]string      `json:"tags"`
		IsPublic    *bool          `json:"isPublic"`
		IsFeatured  *bool          `json:"isFeatured"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	item, err := h.Svc.Portfolio.Update(c.Request().Context(), identity(c), c.Param("id"), service.PortfolioUpdate(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeletePortfolioItem handles DELETE /v1/portfolio/:id.
func (h *Handler) DeletePortfolioItem(c echo.Context) error {
	if err := h.Svc.Portfolio.Delete(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListWorkerPortfolio handles GET /v1/workers/:id/portfolio, including
// private items for the worker and their tenant's staff.
func (h *Handler) ListWorkerPortfolio(c echo.Context) error {
	list, err := h.Svc.Portfolio.ListByWorker(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListPublicPortfolio handles GET /v1/workers/:id/portfolio/public.
func (h *Handler) ListPublicPortfolio(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Portfolio.ListPublic(c.Request().Context(), c.Param("id"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// UploadMedia handles POST /v1/media as multipart form data with a "file"
// part and a "folder" field.
func (h *Handler) UploadMedia(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return h.fail(c, apperr.Invalid("file is required"))
	}
	if fh.Size > maxUploadBytes {
		return h.fail(c, apperr.Invalid("file exceeds %d bytes", maxUploadBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return h.fail(c, apperr.Invalid("file is unreadable"))
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return h.fail(c, apperr.Invalid("file is unreadable"))
	}
	asset, err := h.Svc.Media.Upload(c.Request().Context(), identity(c), data, fh.Filename, c.FormValue("folder"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, asset)
}
