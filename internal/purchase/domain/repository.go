package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, purchase *Purchase) error
	Update(ctx context.Context, db *gorm.DB, purchase *Purchase) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Purchase, error)
	// FindByIDForUpdate locks the row for the duration of the surrounding
	// transaction. Seat claims go through this to serialize capacity checks.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Purchase, error)
	List(ctx context.Context, db *gorm.DB, filter ListPurchaseFilter, page pagination.Pagination) ([]*Purchase, error)
	ListActiveByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]Purchase, error)
	UpdateSeats(ctx context.Context, db *gorm.DB, id snowflake.ID, currentUsers int, status PurchaseStatus) error
}
