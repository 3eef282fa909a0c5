package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/internal/product/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":        product.Name,
			"slug":        product.Slug,
			"description": product.Description,
			"category":    product.Category,
			"features":    product.Features,
			"price":       product.Price,
			"max_users":   product.MaxUsers,
			"updated_at":  product.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).
		Where("product_id = ?", id).
		Delete(&domain.PricingTier{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Product{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&product).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListProductFilter, page pagination.Pagination) ([]*domain.Product, error) {
	var products []*domain.Product
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) InsertTier(ctx context.Context, db *gorm.DB, tier *domain.PricingTier) error {
	return db.WithContext(ctx).Create(tier).Error
}

func (r *repo) UpdateTier(ctx context.Context, db *gorm.DB, tier *domain.PricingTier) error {
	return db.WithContext(ctx).
		Model(&domain.PricingTier{}).
		Where("id = ?", tier.ID).
		Updates(map[string]any{
			"name":                tier.Name,
			"duration_months":     tier.DurationMonths,
			"price":               tier.Price,
			"original_price":      tier.OriginalPrice,
			"discount_percentage": tier.DiscountPercentage,
			"features":            tier.Features,
			"is_recommended":      tier.IsRecommended,
			"updated_at":          tier.UpdatedAt,
		}).Error
}

func (r *repo) DeleteTier(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.PricingTier{}).Error
}

func (r *repo) FindTierByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PricingTier, error) {
	var tier domain.PricingTier
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&tier).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repo) ListTiersByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]domain.PricingTier, error) {
	var tiers []domain.PricingTier
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("duration_months asc, id asc").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}
