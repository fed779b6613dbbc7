package model

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
	ReviewFlagged  ReviewStatus = "flagged"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected, ReviewFlagged:
		return true
	}
	return false
}

type ReviewResponse struct {
	Content     string `json:"content"`
	RespondedBy string `json:"respondedBy"`
	RespondedAt int64  `json:"respondedAt"`
}

// Review is a customer's rating of a fulfilled order.
type Review struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"orderId"`
	TenantID     string          `json:"tenantId"`
	StyleID      string          `json:"styleId"`
	CustomerID   string          `json:"customerId"`
	Rating       int             `json:"rating"`
	Title        string          `json:"title,omitempty"`
	Content      string          `json:"content"`
	Images       []string        `json:"images,omitempty"`
	Pros         []string        `json:"pros,omitempty"`
	Cons         []string        `json:"cons,omitempty"`
	IsVerified   bool            `json:"isVerified"`
	Response     *ReviewResponse `json:"response,omitempty"`
	HelpfulCount int             `json:"helpfulCount"`
	ReportCount  int             `json:"reportCount"`
	Status       ReviewStatus    `json:"status"`
	CreatedAt    int64           `json:"createdAt"`
	UpdatedAt    int64           `json:"updatedAt"`
}
