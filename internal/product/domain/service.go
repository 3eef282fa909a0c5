package domain

import (
	"context"
	"errors"

	"github.com/seatwise/seatwise/pkg/db/pagination"
)

type ListProductFilter struct {
	Name     string
	Category string
}

type ListProductRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Category  string
}

type ListProductResponse struct {
	pagination.PageInfo
	Products []Product `json:"products"`
}

type CreateProductRequest struct {
	Name        string
	Description string
	Category    string
	Features    []string
	Price       float64
	MaxUsers    int
}

type UpdateProductRequest struct {
	ID          string
	Name        string
	Description string
	Category    string
	Features    []string
	Price       float64
	MaxUsers    int
}

type ProductDetail struct {
	Product
	Tiers []PricingTier `json:"pricing_tiers"`
}

type CreateTierRequest struct {
	ProductID          string
	Name               string
	DurationMonths     int
	Price              float64
	OriginalPrice      *float64
	DiscountPercentage *float64
	Features           []string
	IsRecommended      bool
}

type UpdateTierRequest struct {
	ID                 string
	Name               string
	DurationMonths     int
	Price              float64
	OriginalPrice      *float64
	DiscountPercentage *float64
	Features           []string
	IsRecommended      bool
}

type Service interface {
	Create(context.Context, CreateProductRequest) (Product, error)
	Update(context.Context, UpdateProductRequest) (Product, error)
	Delete(ctx context.Context, id string) error
	List(context.Context, ListProductRequest) (ListProductResponse, error)
	GetByID(ctx context.Context, id string) (ProductDetail, error)

	CreateTier(context.Context, CreateTierRequest) (PricingTier, error)
	UpdateTier(context.Context, UpdateTierRequest) (PricingTier, error)
	DeleteTier(ctx context.Context, id string) error
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidMaxUsers    = errors.New("invalid_max_users")
	ErrInvalidDuration    = errors.New("invalid_duration")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrTierNotFound       = errors.New("tier_not_found")
)
