package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/handler"
)

// RegisterMessaging registers conversations, messages, notifications and
// huddles.
func RegisterMessaging(g *echo.Group, h *handler.Handler) {
	g.GET("/conversations", h.ListConversations)
	g.GET("/conversations/with/:accountId", h.ConversationWith)
	g.PUT("/conversations/:id/archive", h.ArchiveConversation)
	g.GET("/conversations/:id/messages", h.ListConversationMessages)
	g.POST("/conversations/:id/read", h.MarkConversationRead)

	g.POST("/messages", h.SendMessage)
	g.GET("/messages/unread-count", h.UnreadMessages)
	g.PATCH("/messages/:id", h.EditMessage)
	g.DELETE("/messages/:id", h.DeleteMessage)
	g.POST("/messages/:id/reactions", h.ToggleReaction)
	g.GET("/orders/:id/messages", h.ListOrderMessages)

	g.GET("/notifications", h.ListNotifications)
	g.GET("/notifications/unread-count", h.UnreadNotifications)
	g.POST("/notifications", h.CreateNotification)
	g.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
	g.PUT("/notifications/:id/read", h.MarkNotificationRead)
	g.DELETE("/notifications/read", h.DeleteReadNotifications)
	g.DELETE("/notifications/:id", h.DeleteNotification)

	g.POST("/huddles", h.CreateHuddle)
	g.PUT("/huddles/:id/end", h.EndHuddle)
	g.GET("/orders/:id/huddles", h.ListOrderHuddles)
}
