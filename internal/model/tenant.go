package model

import "github.com/shopspring/decimal"

// FeeRange bounds the customization fee a tenant accepts.
type FeeRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// TenantSettings drive order pricing and the production stages shown to
// customers.
type TenantSettings struct {
	BasePrice             decimal.Decimal `json:"basePrice"`
	CustomizationFeeRange FeeRange        `json:"customizationFeeRange"`
	AllowNegotiation      bool            `json:"allowNegotiation"`
	ProgressStages        []Stage         `json:"progressStages"`
	DeliveryFee           decimal.Decimal `json:"deliveryFee"`
	Currency              string          `json:"currency"`
}

// DefaultTenantSettings returns the settings given to a newly created tenant.
func DefaultTenantSettings() TenantSettings {
	return TenantSettings{
		BasePrice: decimal.Zero,
		CustomizationFeeRange: FeeRange{
			Min: decimal.Zero,
			Max: decimal.NewFromInt(10000),
		},
		AllowNegotiation: true,
		ProgressStages:   []Stage{StageCutting, StageSewing, StageFinishing},
		DeliveryFee:      decimal.Zero,
		Currency:         "NGN",
	}
}

// TenantStats are maintained by style, order and review side effects.
type TenantStats struct {
	TotalDesigns    int     `json:"totalDesigns"`
	CompletedOrders int     `json:"completedOrders"`
	AverageRating   float64 `json:"averageRating"`
	TotalReviews    int     `json:"totalReviews"`
	ResponseTime    int     `json:"responseTime"` // minutes
}

// Tenant is a tailoring business. Every tenant-owned record carries its id.
type Tenant struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	ExternalOrgID string         `json:"externalOrgId,omitempty"`
	Logo          string         `json:"logo,omitempty"`
	CoverImage    string         `json:"coverImage,omitempty"`
	Description   string         `json:"description"`
	Tagline       string         `json:"tagline,omitempty"`
	Address       Address        `json:"address"`
	Phone         string         `json:"phone"`
	Email         string         `json:"email"`
	Settings      TenantSettings `json:"settings"`
	Stats         TenantStats    `json:"stats"`
	Badges        []string       `json:"badges"`
	IsActive      bool           `json:"isActive"`
	IsPremium     bool           `json:"isPremium"`
	Verified      bool           `json:"verified"`
	CreatedAt     int64          `json:"createdAt"`
	UpdatedAt     int64          `json:"updatedAt"`
}

// Address is a postal address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode,omitempty"`
}

// CustomerLinkStats aggregate one customer's history with one tenant.
type CustomerLinkStats struct {
	TotalOrders       int             `json:"totalOrders"`
	CompletedOrders   int             `json:"completedOrders"`
	TotalSpent        decimal.Decimal `json:"totalSpent"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	LastOrderDate     int64           `json:"lastOrderDate"`
}

// CustomerLink records that a customer has ordered from a tenant.
type CustomerLink struct {
	ID           string            `json:"id"`
	CustomerID   string            `json:"customerId"`
	TenantID     string            `json:"tenantId"`
	FirstOrderID string            `json:"firstOrderId"`
	Stats        CustomerLinkStats `json:"stats"`
	CreatedAt    int64             `json:"createdAt"`
	UpdatedAt    int64             `json:"updatedAt"`
}

// RecordOrder folds a new order total into the link stats.
func (l *CustomerLink) RecordOrder(total decimal.Decimal, at int64) {
	l.Stats.TotalOrders++
	l.Stats.TotalSpent = l.Stats.TotalSpent.Add(total)
	l.Stats.AverageOrderValue = l.Stats.TotalSpent.Div(decimal.NewFromInt(int64(l.Stats.TotalOrders))).Round(2)
	l.Stats.LastOrderDate = at
}
