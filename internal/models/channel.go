package models

import "github.com/google/uuid"

// Channel listing statuses.
const (
	ChannelStatusPending   = "pending"
	ChannelStatusApproved  = "approved"
	ChannelStatusAvailable = "available"
	ChannelStatusSold      = "sold"
)

// Channel describes a YouTube channel listed for sale.
type Channel struct {
	BaseModel
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Subscribers   int64     `json:"subscribers"`
	TotalViews    int64     `json:"total_views"`
	VideoCount    int       `json:"video_count"`
	Monetized     bool      `json:"monetized"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"original_price,omitempty"`
	Description   string    `json:"description"`
	BannerURL     string    `json:"banner_url"`
	ImageURLs     []string  `gorm:"serializer:json" json:"image_urls"`
	ContactEmail  string    `json:"contact_email"`
	ContactPhone  string    `json:"contact_phone"`
	Status        string    `gorm:"index;default:available" json:"status"`
	MostDemanding bool      `json:"most_demanding"`
	SellerID      uuid.UUID `gorm:"type:uuid;index" json:"seller_id"`
	Seller        *User     `json:"seller,omitempty"`
}
