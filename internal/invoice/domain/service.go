package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/pkg/db/pagination"
)

type ListInvoiceFilter struct {
	CustomerID *snowflake.ID
	Status     InvoiceStatus
	IssuedFrom *time.Time
	IssuedTo   *time.Time
}

type ListInvoiceRequest struct {
	PageToken  string
	PageSize   int32
	CustomerID string
	Status     string
	IssuedFrom *time.Time
	IssuedTo   *time.Time
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

// CreateInvoiceItemRequest is one line of a new invoice.
type CreateInvoiceItemRequest struct {
	SubscriptionID string
	Amount         float64
	Description    string
}

type CreateInvoiceRequest struct {
	CustomerID string
	// SubscriptionID builds a legacy single-subscription invoice when Items
	// is empty.
	SubscriptionID string
	Amount         float64
	Items          []CreateInvoiceItemRequest
	IssueDate      *time.Time
	DueDate        *time.Time
}

type InvoiceDetail struct {
	Invoice
	Items []InvoiceItem `json:"items"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (InvoiceDetail, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (InvoiceDetail, error)
	MarkPaid(ctx context.Context, id string) (Invoice, error)
	Delete(ctx context.Context, id string) error
	// MarkOverduePending is the scheduler entry point: pending invoices past
	// their due date become overdue.
	MarkOverduePending(ctx context.Context, limit int) (int, error)
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrNoItems              = errors.New("no_items")
	ErrCustomerNotFound     = errors.New("customer_not_found")
	ErrNotFound             = errors.New("not_found")
	ErrAlreadyPaid          = errors.New("already_paid")
	ErrSubscriptionInvoiced = errors.New("subscription_already_invoiced")
)
