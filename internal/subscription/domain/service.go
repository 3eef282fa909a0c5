package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/pkg/db/pagination"
)

type ListSubscriptionFilter struct {
	CustomerID *snowflake.ID
	Status     SubscriptionStatus
}

type ListSubscriptionRequest struct {
	PageToken  string
	PageSize   int32
	CustomerID string
	Status     string
}

type ListSubscriptionResponse struct {
	pagination.PageInfo
	Subscriptions []Subscription `json:"subscriptions"`
}

type CreateSubscriptionRequest struct {
	CustomerID         string
	PricingTierID      string
	PurchaseID         string
	StartDate          *time.Time
	DiscountPercentage float64
	CustomPrice        *float64
}

type QuoteRequest struct {
	PricingTierID      string
	PurchaseID         string
	DiscountPercentage float64
	CustomPrice        *float64
}

// RenewResult reports the outcome of a renewal: the extended subscription
// and the invoice issued for the renewal period.
type RenewResult struct {
	Subscription Subscription `json:"subscription"`
	InvoiceID    snowflake.ID `json:"invoice_id"`
	Amount       float64      `json:"amount"`
}

type Service interface {
	Create(context.Context, CreateSubscriptionRequest) (Subscription, error)
	List(context.Context, ListSubscriptionRequest) (ListSubscriptionResponse, error)
	GetByID(ctx context.Context, id string) (Subscription, error)
	Cancel(ctx context.Context, id string) (Subscription, error)
	Delete(ctx context.Context, id string) error
	Quote(context.Context, QuoteRequest) (Quote, error)
	Renew(ctx context.Context, id string) (RenewResult, error)
	// ListExpiring returns active subscriptions ending within windowDays from
	// today, soonest first.
	ListExpiring(ctx context.Context, windowDays int) ([]ExpiringSubscription, error)
	// MarkExpired flips active subscriptions past their end date to expired,
	// releasing claimed seats. Returns the number of rows transitioned.
	MarkExpired(ctx context.Context, limit int) (int, error)
}

var (
	ErrInvalidID                = errors.New("invalid_id")
	ErrInvalidDiscount          = errors.New("invalid_discount")
	ErrCustomerNotFound         = errors.New("customer_not_found")
	ErrTierNotFound             = errors.New("tier_not_found")
	ErrSubscriptionNotFound     = errors.New("subscription_not_found")
	ErrSubscriptionNotActive    = errors.New("subscription_not_active")
	ErrSubscriptionNotRenewable = errors.New("subscription_not_renewable")
)
