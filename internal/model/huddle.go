package model

type HuddleType string

const (
	HuddleAudio HuddleType = "audio"
	HuddleVideo HuddleType = "video"
)

type HuddleStatus string

const (
	HuddleActive HuddleStatus = "active"
	HuddleEnded  HuddleStatus = "ended"
)

// Huddle is a live call session between tenant staff and customers.
type Huddle struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenantId"`
	RoomName     string       `json:"roomName"`
	OrderID      string       `json:"orderId,omitempty"`
	Participants []string     `json:"participants"`
	StartedBy    string       `json:"startedBy"`
	Type         HuddleType   `json:"type"`
	Status       HuddleStatus `json:"status"`
	Duration     *int64       `json:"duration,omitempty"`
	StartedAt    int64        `json:"startedAt"`
	EndedAt      *int64       `json:"endedAt,omitempty"`
	CreatedAt    int64        `json:"createdAt"`
	UpdatedAt    int64        `json:"updatedAt"`
}

func (h *Huddle) HasParticipant(id string) bool {
	for _, p := range h.Participants {
		if p == id {
			return true
		}
	}
	return false
}
