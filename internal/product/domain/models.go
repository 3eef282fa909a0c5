package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Product struct {
	ID          snowflake.ID                 `gorm:"primaryKey" json:"id"`
	Name        string                       `gorm:"not null" json:"name"`
	Slug        string                       `gorm:"not null;uniqueIndex:ux_products_slug" json:"slug"`
	Description string                       `gorm:"type:text;not null" json:"description"`
	Category    string                       `gorm:"index" json:"category,omitempty"`
	Features    datatypes.JSONSlice[string]  `gorm:"type:jsonb" json:"features,omitempty"`
	Price       float64                      `gorm:"not null;default:0" json:"price"`
	MaxUsers    int                          `gorm:"not null;default:1" json:"max_users"`
	CreatedAt   time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// PricingTier is a priced duration option belonging to a product.
type PricingTier struct {
	ID                 snowflake.ID                `gorm:"primaryKey" json:"id"`
	ProductID          snowflake.ID                `gorm:"not null;index" json:"product_id"`
	Name               string                      `gorm:"not null" json:"name"`
	DurationMonths     int                         `gorm:"not null" json:"duration_months"`
	Price              float64                     `gorm:"not null" json:"price"`
	OriginalPrice      *float64                    `gorm:"" json:"original_price,omitempty"`
	DiscountPercentage *float64                    `gorm:"" json:"discount_percentage,omitempty"`
	Features           datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"features,omitempty"`
	IsRecommended      bool                        `gorm:"not null;default:false" json:"is_recommended"`
	CreatedAt          time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (PricingTier) TableName() string { return "pricing_tiers" }
