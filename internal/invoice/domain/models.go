// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice bills a customer. Multi-item invoices carry their lines in
// invoice_items; legacy single-subscription invoices reference the
// subscription directly and have no items.
type Invoice struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	SubscriptionID *snowflake.ID `gorm:"index" json:"subscription_id,omitempty"`
	TotalAmount    float64       `gorm:"not null;default:0" json:"total_amount"`
	Status         InvoiceStatus `gorm:"type:text;not null;default:'pending';index" json:"status"`
	IssueDate      time.Time     `gorm:"not null" json:"issue_date"`
	DueDate        time.Time     `gorm:"not null;index" json:"due_date"`
	PaidDate       *time.Time    `gorm:"" json:"paid_date,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one priced line within an invoice, usually covering one
// subscription. The unique index enforces at most one line per subscription
// across all invoices.
type InvoiceItem struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID      snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	SubscriptionID snowflake.ID `gorm:"not null;uniqueIndex:ux_invoice_items_subscription" json:"subscription_id"`
	Amount         float64      `gorm:"not null" json:"amount"`
	Description    string       `gorm:"type:text" json:"description,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
