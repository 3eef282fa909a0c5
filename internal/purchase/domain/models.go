package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PurchaseStatus represents lifecycle states for a bulk-bought account.
type PurchaseStatus string

const (
	PurchaseStatusActive    PurchaseStatus = "active"
	PurchaseStatusFull      PurchaseStatus = "full"
	PurchaseStatusExpired   PurchaseStatus = "expired"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// Purchase is a bulk-bought account/license with a seat capacity that is
// resold piecemeal through sales and subscriptions.
type Purchase struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	ProductID        *snowflake.ID  `gorm:"index" json:"product_id,omitempty"`
	ServiceName      string         `gorm:"not null" json:"service_name"`
	AccountDetails   string         `gorm:"type:text;not null" json:"account_details"`
	PurchasePrice    float64        `gorm:"not null" json:"purchase_price"`
	SalePricePerUser float64        `gorm:"not null;default:0" json:"sale_price_per_user"`
	MaxUsers         int            `gorm:"not null;default:1" json:"max_users"`
	CurrentUsers     int            `gorm:"not null;default:0" json:"current_users"`
	PurchaseDate     time.Time      `gorm:"not null" json:"purchase_date"`
	Status           PurchaseStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	Notes            string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Purchase) TableName() string { return "purchases" }

// SeatsLeft returns the remaining resellable seats.
func (p Purchase) SeatsLeft() int {
	left := p.MaxUsers - p.CurrentUsers
	if left < 0 {
		return 0
	}
	return left
}

// CostPerSeat is the cost basis for one resold seat. Zero when the capacity
// is unknown, in which case aggregations skip the cost contribution.
func (p Purchase) CostPerSeat() float64 {
	if p.MaxUsers <= 0 {
		return 0
	}
	return p.PurchasePrice / float64(p.MaxUsers)
}
