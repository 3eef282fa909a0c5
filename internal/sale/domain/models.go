package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SaleStatus represents lifecycle states for a direct seat sale.
type SaleStatus string

const (
	SaleStatusActive    SaleStatus = "active"
	SaleStatusExpired   SaleStatus = "expired"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Sale is one seat sold from a purchase to a customer outside the
// subscription/invoice flow.
type Sale struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	PurchaseID    snowflake.ID `gorm:"not null;index" json:"purchase_id"`
	CustomerID    snowflake.ID `gorm:"not null;index" json:"customer_id"`
	SalePrice     float64      `gorm:"not null" json:"sale_price"`
	SaleDate      time.Time    `gorm:"not null" json:"sale_date"`
	AccessDetails string       `gorm:"type:text;not null" json:"access_details"`
	Status        SaleStatus   `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }
