package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/internal/purchase/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, purchase *domain.Purchase) error {
	return db.WithContext(ctx).Create(purchase).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, purchase *domain.Purchase) error {
	return db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Where("id = ?", purchase.ID).
		Updates(map[string]any{
			"service_name":        purchase.ServiceName,
			"account_details":     purchase.AccountDetails,
			"purchase_price":      purchase.PurchasePrice,
			"sale_price_per_user": purchase.SalePricePerUser,
			"max_users":           purchase.MaxUsers,
			"status":              purchase.Status,
			"notes":               purchase.Notes,
			"updated_at":          purchase.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Purchase{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&purchase).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&purchase).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPurchaseFilter, page pagination.Pagination) ([]*domain.Purchase, error) {
	var purchases []*domain.Purchase
	stmt := db.WithContext(ctx).Model(&domain.Purchase{})
	if filter.ServiceName != "" {
		stmt = stmt.Where("service_name LIKE ?", "%"+filter.ServiceName+"%")
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ProductID != nil {
		stmt = stmt.Where("product_id = ?", *filter.ProductID)
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
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *repo) ListActiveByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	err := db.WithContext(ctx).
		Where("product_id = ? AND status IN ?", productID, []domain.PurchaseStatus{
			domain.PurchaseStatusActive,
			domain.PurchaseStatusFull,
		}).
		Order("purchase_date asc, id asc").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *repo) UpdateSeats(ctx context.Context, db *gorm.DB, id snowflake.ID, currentUsers int, status domain.PurchaseStatus) error {
	return db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_users": currentUsers,
			"status":        status,
		}).Error
}
