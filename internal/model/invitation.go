package model

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationExpired   InvitationStatus = "expired"
	InvitationCancelled InvitationStatus = "cancelled"
)

func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationExpired, InvitationCancelled:
		return true
	}
	return false
}

// Invitation offers a staff role in a tenant. Only the hash of the token
// is stored; the raw token goes out by e-mail.
type Invitation struct {
	ID         string           `json:"id"`
	TenantID   string           `json:"tenantId"`
	Email      string           `json:"email"`
	Role       Role             `json:"role"`
	InvitedBy  string           `json:"invitedBy"`
	TokenHash  string           `json:"tokenHash"`
	Status     InvitationStatus `json:"status"`
	Message    string           `json:"message,omitempty"`
	ExpiresAt  int64            `json:"expiresAt"`
	AcceptedAt *int64           `json:"acceptedAt,omitempty"`
	CreatedAt  int64            `json:"createdAt"`
	UpdatedAt  int64            `json:"updatedAt"`
}
