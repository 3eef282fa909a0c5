package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListPurchaseFilter struct {
	ServiceName string
	Status      PurchaseStatus
	ProductID   *snowflake.ID
}

type ListPurchaseRequest struct {
	PageToken   string
	PageSize    int32
	ServiceName string
	Status      string
	ProductID   string
}

type ListPurchaseResponse struct {
	pagination.PageInfo
	Purchases []Purchase `json:"purchases"`
}

type CreatePurchaseRequest struct {
	ProductID        string
	ServiceName      string
	AccountDetails   string
	PurchasePrice    float64
	SalePricePerUser float64
	MaxUsers         int
	PurchaseDate     *time.Time
	Notes            string
}

type UpdatePurchaseRequest struct {
	ID               string
	ServiceName      string
	AccountDetails   string
	PurchasePrice    float64
	SalePricePerUser float64
	MaxUsers         int
	Status           string
	Notes            string
}

// ProductAvailability sums the remaining seats across a product's active
// purchases. This replaces the client-side available_slots mirror: it is
// always derived from the purchases table.
type ProductAvailability struct {
	ProductID      snowflake.ID `json:"product_id"`
	TotalSeats     int          `json:"total_seats"`
	ClaimedSeats   int          `json:"claimed_seats"`
	AvailableSeats int          `json:"available_seats"`
}

type Service interface {
	Create(context.Context, CreatePurchaseRequest) (Purchase, error)
	Update(context.Context, UpdatePurchaseRequest) (Purchase, error)
	Delete(ctx context.Context, id string) error
	List(context.Context, ListPurchaseRequest) (ListPurchaseResponse, error)
	GetByID(ctx context.Context, id string) (Purchase, error)
	Availability(ctx context.Context, productID string) (ProductAvailability, error)

	// ClaimSeat and ReleaseSeat run inside the caller's transaction so that
	// seat accounting commits or rolls back together with the sale or
	// subscription that triggered it.
	ClaimSeat(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Purchase, error)
	ReleaseSeat(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
}

var (
	ErrInvalidServiceName    = errors.New("invalid_service_name")
	ErrInvalidAccountDetails = errors.New("invalid_account_details")
	ErrInvalidPurchasePrice  = errors.New("invalid_purchase_price")
	ErrInvalidMaxUsers       = errors.New("invalid_max_users")
	ErrInvalidStatus         = errors.New("invalid_status")
	ErrInvalidID             = errors.New("invalid_id")
	ErrNotFound              = errors.New("not_found")
	ErrNoSeatsLeft           = errors.New("no_seats_left")
	ErrPurchaseNotSellable   = errors.New("purchase_not_sellable")
)
