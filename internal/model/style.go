package model

import "github.com/shopspring/decimal"

// Gender is the audience of a style.
type Gender string

const (
	GenderMen    Gender = "men"
	GenderWomen  Gender = "women"
	GenderKids   Gender = "kids"
	GenderUnisex Gender = "unisex"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMen, GenderWomen, GenderKids, GenderUnisex:
		return true
	}
	return false
}

// Image is a hosted media asset referenced by url and provider id.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Alt      string `json:"alt,omitempty"`
}

// MeasurementSet names the measurements a style needs.
type MeasurementSet struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

type StyleStats struct {
	Views  int `json:"views"`
	Likes  int `json:"likes"`
	Orders int `json:"orders"`
	Shares int `json:"shares"`
}

// Style is a design in a tenant's catalogue.
type Style struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenantId"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	SubCategory  string          `json:"subCategory,omitempty"`
	Gender       Gender          `json:"gender"`
	Images       []Image         `json:"images"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	Currency     string          `json:"currency"`
	IsNegotiable bool            `json:"isNegotiable"`
	Measurements MeasurementSet  `json:"measurements"`
	Tags         []string        `json:"tags"`
	IsActive     bool            `json:"isActive"`
	IsFeatured   bool            `json:"isFeatured"`
	Stats        StyleStats      `json:"stats"`
	CreatedBy    string          `json:"createdBy"`
	CreatedAt    int64           `json:"createdAt"`
	UpdatedAt    int64           `json:"updatedAt"`
}

// SavedStyle is a customer's bookmark of a style.
type SavedStyle struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	StyleID   string `json:"styleId"`
	TenantID  string `json:"tenantId"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

type PortfolioStats struct {
	Views int `json:"views"`
	Likes int `json:"likes"`
}

// PortfolioItem showcases a worker's finished piece.
type PortfolioItem struct {
	ID          string         `json:"id"`
	WorkerID    string         `json:"workerId"`
	TenantID    string         `json:"tenantId"`
	OrderID     string         `json:"orderId,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Images      []Image        `json:"images"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	IsPublic    bool           `json:"isPublic"`
	IsFeatured  bool           `json:"isFeatured"`
	Stats       PortfolioStats `json:"stats"`
	CompletedAt int64          `json:"completedAt"`
	CreatedAt   int64          `json:"createdAt"`
	UpdatedAt   int64          `json:"updatedAt"`
}
