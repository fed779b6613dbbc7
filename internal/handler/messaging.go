package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/service"
)

// ListConversations handles GET /v1/conversations?archived=&limit=.
func (h *Handler) ListConversations(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	archived, err := optBool(c, "archived")
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Conversations.ListMine(c.Request().Context(), identity(c), archived, n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ConversationWith handles GET /v1/conversations/with/:accountId.
func (h *Handler) ConversationWith(c echo.Context) error {
	cv, err := h.Svc.Conversations.GetWith(c.Request().Context(), identity(c), c.Param("accountId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, cv)
}

// ArchiveConversation handles PUT /v1/conversations/:id/archive.
func (h *Handler) ArchiveConversation(c echo.Context) error {
	var body struct {
		Archived bool `json:"archived"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	cv, err := h.Svc.Conversations.Archive(c.Request().Context(), identity(c), c.Param("id"), body.Archived)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, cv)
}

// ListConversationMessages handles GET /v1/conversations/:id/messages.
func (h *Handler) ListConversationMessages(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Messages.ListByConversation(c.Request().Context(), identity(c), c.Param("id"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// MarkConversationRead handles POST /v1/conversations/:id/read.
func (h *Handler) MarkConversationRead(c echo.Context) error {
	changed, err := h.Svc.Messages.MarkRead(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": changed})
}

// SendMessage handles POST /v1/messages.
func (h *Handler) SendMessage(c echo.Context) error {
	var body struct {
		ReceiverID string            `json:"receiverId"`
		OrderID    string            `json:"orderId"`
		Content    string            `json:"content"`
		Type       model.MessageType `json:"type"`
		FileURL    string            `json:"fileUrl"`
		FileName   string            `json:"fileName"`
		FileSize   int64             `json:"fileSize"`
		ReplyTo    string            `json:"replyTo"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	m, err := h.Svc.Messages.Send(c.Request().Context(), identity(c), service.MessageInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// ListOrderMessages handles GET /v1/orders/:id/messages.
func (h *Handler) ListOrderMessages(c echo.Context) error {
	n, err := limit(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.Svc.Messages.ListByOrder(c.Request().Context(), identity(c), c.Param("id"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// UnreadMessages handles GET /v1/messages/unread-count.
func (h *Handler) UnreadMessages(c echo.Context) error {
	n, err := h.Svc.Messages.UnreadCount(c.Request().Context(), identity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// EditMessage handles PATCH /v1/messages/:id.
func (h *Handler) EditMessage(c echo.Context) error {
	var body struct {
		Content string `json:"content"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	m, err := h.Svc.Messages.Edit(c.Request().Context(), identity(c), c.Param("id"), body.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteMessage handles DELETE /v1/messages/:id.
func (h *Handler) DeleteMessage(c echo.Context) error {
	m, err := h.Svc.Messages.Delete(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// ToggleReaction handles POST /v1/messages/:id/reactions.
func (h *Handler) ToggleReaction(c echo.Context) error {
	var body struct {
		Emoji string `json:"emoji"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	m, err := h.Svc.Messages.ToggleReaction(c.Request().Context(), identity(c), c.Param("id"), body.Emoji)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}
