package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertItems(ctx context.Context, db *gorm.DB, items []InvoiceItem) error
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindItemBySubscription(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID) (*InvoiceItem, error)
	// FindOpenBySubscription returns an unpaid legacy invoice referencing the
	// subscription, if any.
	FindOpenBySubscription(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID) (*Invoice, error)
	ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	// MarkOverdue flips pending invoices past due to overdue, capped at limit.
	MarkOverdue(ctx context.Context, db *gorm.DB, before time.Time, limit int) (int, error)
}
