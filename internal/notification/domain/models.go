package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeSuccess, NotificationTypeWarning, NotificationTypeError:
		return true
	}
	return false
}

type NotificationCategory string

const (
	CategoryInvoice      NotificationCategory = "invoice"
	CategorySubscription NotificationCategory = "subscription"
	CategoryCustomer     NotificationCategory = "customer"
	CategorySystem       NotificationCategory = "system"
	CategoryPayment      NotificationCategory = "payment"
)

func (c NotificationCategory) Valid() bool {
	switch c {
	case CategoryInvoice, CategorySubscription, CategoryCustomer, CategorySystem, CategoryPayment:
		return true
	}
	return false
}

type Notification struct {
	ID          snowflake.ID         `gorm:"primaryKey" json:"id,string"`
	Type        NotificationType     `gorm:"type:varchar(16);not null" json:"type"`
	Category    NotificationCategory `gorm:"type:varchar(32);not null;index" json:"category"`
	Title       string               `gorm:"not null" json:"title"`
	Message     string               `gorm:"not null" json:"message"`
	IsImportant bool                 `gorm:"not null;default:false" json:"is_important"`
	IsRead      bool                 `gorm:"not null;default:false;index" json:"is_read"`
	ActionURL   string               `json:"action_url,omitempty"`
	ActionText  string               `json:"action_text,omitempty"`
	// RefID ties a notification back to the record it announces, used to
	// suppress duplicate reminders for the same subscription.
	RefID     *snowflake.ID `gorm:"index" json:"ref_id,string,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
