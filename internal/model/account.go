package model

import "github.com/shopspring/decimal"

// Role is an account's position within the platform.
type Role string

const (
	RolePlatformAdmin Role = "platform_admin"
	RoleOrgAdmin      Role = "org_admin"
	RoleManager       Role = "manager"
	RoleWorker        Role = "worker"
	RoleCustomer      Role = "customer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RolePlatformAdmin, RoleOrgAdmin, RoleManager, RoleWorker, RoleCustomer:
		return true
	}
	return false
}

// NotificationChannels toggles delivery channels for an account.
type NotificationChannels struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

// Preferences are per-account display and delivery settings.
type Preferences struct {
	Notifications   NotificationChannels `json:"notifications"`
	Language        string               `json:"language"`
	Currency        string               `json:"currency"`
	MeasurementUnit string               `json:"measurementUnit"` // cm | inches
}

// DefaultPreferences is applied to accounts created by identity sync.
func DefaultPreferences() Preferences {
	return Preferences{
		Notifications:   NotificationChannels{Email: true, Push: true},
		Language:        "en",
		Currency:        "NGN",
		MeasurementUnit: "cm",
	}
}

// AccountStats are denormalized counters kept by order, style and
// assignment side effects.
type AccountStats struct {
	TotalOrders     int             `json:"totalOrders"`
	CompletedOrders int             `json:"completedOrders"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	SavedStyles     int             `json:"savedStyles"`
	TasksCompleted  int             `json:"tasksCompleted"`
}

// Account is an authenticated identity in the system, linked to the
// identity provider by ExternalID.
type Account struct {
	ID                string             `json:"id"`
	ExternalID        string             `json:"externalId"`
	Email             string             `json:"email"`
	Name              string             `json:"name"`
	Phone             string             `json:"phone,omitempty"`
	Avatar            string             `json:"avatar,omitempty"`
	Role              Role               `json:"role"`
	TenantID          string             `json:"tenantId,omitempty"`
	Preferences       Preferences        `json:"preferences"`
	SavedMeasurements map[string]float64 `json:"savedMeasurements,omitempty"`
	Stats             AccountStats       `json:"stats"`
	IsActive          bool               `json:"isActive"`
	LastActiveAt      int64              `json:"lastActiveAt"`
	CreatedAt         int64              `json:"createdAt"`
	UpdatedAt         int64              `json:"updatedAt"`
}
