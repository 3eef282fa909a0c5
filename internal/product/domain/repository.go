package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListProductFilter, page pagination.Pagination) ([]*Product, error)

	InsertTier(ctx context.Context, db *gorm.DB, tier *PricingTier) error
	UpdateTier(ctx context.Context, db *gorm.DB, tier *PricingTier) error
	DeleteTier(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindTierByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PricingTier, error)
	ListTiersByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]PricingTier, error)
}
