package model

import "strings"

type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationOrder  ConversationType = "order"
)

type LastMessage struct {
	Content   string `json:"content"`
	SenderID  string `json:"senderId"`
	Timestamp int64  `json:"timestamp"`
}

// Conversation is the thread between exactly two accounts.
type Conversation struct {
	ID             string           `json:"id"`
	ParticipantKey string           `json:"participantKey"`
	Participants   []string         `json:"participants"`
	OrderID        string           `json:"orderId,omitempty"`
	Type           ConversationType `json:"type"`
	LastMessage    *LastMessage     `json:"lastMessage,omitempty"`
	UnreadCounts   map[string]int   `json:"unreadCounts"`
	IsArchived     bool             `json:"isArchived"`
	CreatedAt      int64            `json:"createdAt"`
	UpdatedAt      int64            `json:"updatedAt"`
}

// ParticipantKey returns the canonical key of the unordered pair {a, b}.
func ParticipantKey(a, b string) string {
	lo, hi := SortedPair(a, b)
	return lo + "|" + hi
}

// SortedPair returns a and b in ascending order.
func SortedPair(a, b string) (string, string) {
	if strings.Compare(a, b) <= 0 {
		return a, b
	}
	return b, a
}

// HasParticipant reports whether id is one of the two participants.
func (c *Conversation) HasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageSystem:
		return true
	}
	return false
}

type Reaction struct {
	UserID    string `json:"userId"`
	Emoji     string `json:"emoji"`
	Timestamp int64  `json:"timestamp"`
}

type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	SenderID       string      `json:"senderId"`
	ReceiverID     string      `json:"receiverId"`
	OrderID        string      `json:"orderId,omitempty"`
	Content        string      `json:"content"`
	Type           MessageType `json:"type"`
	FileURL        string      `json:"fileUrl,omitempty"`
	FileName       string      `json:"fileName,omitempty"`
	FileSize       int64       `json:"fileSize,omitempty"`
	IsRead         bool        `json:"isRead"`
	IsEdited       bool        `json:"isEdited"`
	EditedAt       *int64      `json:"editedAt,omitempty"`
	DeletedAt      *int64      `json:"deletedAt,omitempty"`
	ReplyTo        string      `json:"replyTo,omitempty"`
	Reactions      []Reaction  `json:"reactions"`
	CreatedAt      int64       `json:"createdAt"`
	UpdatedAt      int64       `json:"updatedAt"`
}

// ToggleReaction adds the reaction, or removes it if userID already
// reacted with emoji.
func (m *Message) ToggleReaction(userID, emoji string, at int64) {
	for i, r := range m.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
			return
		}
	}
	m.Reactions = append(m.Reactions, Reaction{UserID: userID, Emoji: emoji, Timestamp: at})
}

type NotificationPriority string

const (
	PriorityNotifyLow    NotificationPriority = "low"
	PriorityNotifyNormal NotificationPriority = "normal"
	PriorityNotifyHigh   NotificationPriority = "high"
)

// Notification is an in-app message addressed to one account.
type Notification struct {
	ID        string               `json:"id"`
	UserID    string               `json:"userId"`
	Type      string               `json:"type"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Data      map[string]any       `json:"data,omitempty"`
	OrderID   string               `json:"orderId,omitempty"`
	StyleID   string               `json:"styleId,omitempty"`
	SenderID  string               `json:"senderId,omitempty"`
	IsRead    bool                 `json:"isRead"`
	ReadAt    *int64               `json:"readAt,omitempty"`
	ActionURL string               `json:"actionUrl,omitempty"`
	Priority  NotificationPriority `json:"priority"`
	ExpiresAt *int64               `json:"expiresAt,omitempty"`
	CreatedAt int64                `json:"createdAt"`
	UpdatedAt int64                `json:"updatedAt"`
}

// Expired reports whether the notification has passed its expiry at now.
func (n *Notification) Expired(now int64) bool {
	return n.ExpiresAt != nil && *n.ExpiresAt <= now
}
