// Package domain contains persistence models and pricing rules for
// subscriptions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription is a customer's time-boxed entitlement to a pricing tier,
// optionally backed by a seat on a specific purchase.
type Subscription struct {
	ID                 snowflake.ID       `gorm:"primaryKey" json:"id"`
	CustomerID         snowflake.ID       `gorm:"not null;index" json:"customer_id"`
	PricingTierID      snowflake.ID       `gorm:"not null;index" json:"pricing_tier_id"`
	PurchaseID         *snowflake.ID      `gorm:"index" json:"purchase_id,omitempty"`
	StartDate          time.Time          `gorm:"not null" json:"start_date"`
	EndDate            time.Time          `gorm:"not null;index" json:"end_date"`
	Status             SubscriptionStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	DiscountPercentage float64            `gorm:"not null;default:0" json:"discount_percentage"`
	FinalPrice         float64            `gorm:"not null;default:0" json:"final_price"`
	CustomPrice        *float64           `gorm:"" json:"custom_price,omitempty"`
	CreatedAt          time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// EffectivePrice resolves the price a subscription is billed at:
// custom_price when set and positive, then final_price, then the purchase's
// per-user sale price, then the tier price. First positive value wins.
func (s Subscription) EffectivePrice(purchaseSalePerUser, tierPrice float64) float64 {
	if s.CustomPrice != nil && *s.CustomPrice > 0 {
		return *s.CustomPrice
	}
	if s.FinalPrice > 0 {
		return s.FinalPrice
	}
	if purchaseSalePerUser > 0 {
		return purchaseSalePerUser
	}
	return tierPrice
}
