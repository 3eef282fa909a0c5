package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/pkg/db/pagination"
)

type ListSaleFilter struct {
	PurchaseID *snowflake.ID
	CustomerID *snowflake.ID
	Status     SaleStatus
}

type ListSaleRequest struct {
	PageToken  string
	PageSize   int32
	PurchaseID string
	CustomerID string
	Status     string
}

type ListSaleResponse struct {
	pagination.PageInfo
	Sales []Sale `json:"sales"`
}

type CreateSaleRequest struct {
	PurchaseID    string
	CustomerID    string
	SalePrice     float64
	SaleDate      *time.Time
	AccessDetails string
}

type UpdateSaleRequest struct {
	ID            string
	SalePrice     float64
	AccessDetails string
	Status        string
}

type Service interface {
	Create(context.Context, CreateSaleRequest) (Sale, error)
	Update(context.Context, UpdateSaleRequest) (Sale, error)
	Delete(ctx context.Context, id string) error
	List(context.Context, ListSaleRequest) (ListSaleResponse, error)
	GetByID(ctx context.Context, id string) (Sale, error)
}

var (
	ErrInvalidSalePrice     = errors.New("invalid_sale_price")
	ErrInvalidAccessDetails = errors.New("invalid_access_details")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidID            = errors.New("invalid_id")
	ErrCustomerNotFound     = errors.New("customer_not_found")
	ErrNotFound             = errors.New("not_found")
)
